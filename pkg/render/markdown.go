package render

import (
	"github.com/russross/blackfriday"
)

const extensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
	blackfriday.EXTENSION_TABLES |
	blackfriday.EXTENSION_FENCED_CODE |
	blackfriday.EXTENSION_AUTOLINK |
	blackfriday.EXTENSION_STRIKETHROUGH |
	blackfriday.EXTENSION_SPACE_HEADERS |
	blackfriday.EXTENSION_HARD_LINE_BREAK

// Completions are untrusted, so raw HTML, style blocks and unsafe links
// are dropped.
const htmlFlags = blackfriday.HTML_USE_XHTML |
	blackfriday.HTML_SKIP_HTML |
	blackfriday.HTML_SKIP_STYLE |
	blackfriday.HTML_SAFELINK

// ToHTML converts model-written markdown into an HTML fragment.
func ToHTML(markdown string) string {
	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	return string(blackfriday.Markdown([]byte(markdown), renderer, extensions))
}
