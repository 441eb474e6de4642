package prompt

import "strings"

const (
	InstOpen  = "[INST]"
	InstClose = "[/INST]"
	SysOpen   = "<<SYS>>"
	SysClose  = "<</SYS>>"
)

var delimiterReplacer = strings.NewReplacer(
	InstOpen, "",
	InstClose, "",
	SysOpen, "",
	SysClose, "",
)

// StripDelimiters removes instruction markup so embedded text cannot close
// the instruction block early or open a new system section.
func StripDelimiters(s string) string {
	// A single pass can assemble a new delimiter from the pieces around a
	// removed one, e.g. "[/IN[INST]ST]".
	for {
		out := delimiterReplacer.Replace(s)
		if out == s {
			return out
		}
		s = out
	}
}

// Instruct renders p with the Mistral instruction template.
func Instruct(p Prompt) string {
	var b strings.Builder

	b.WriteString(InstOpen + " " + SysOpen + "\n")
	b.WriteString(p.System)
	b.WriteString("\n" + SysClose + "\n\n")

	if p.Context != "" {
		b.WriteString("Context: ")
		b.WriteString(StripDelimiters(p.Context))
		b.WriteString("\n\n")
	}

	b.WriteString("User request: ")
	b.WriteString(StripDelimiters(p.Request))
	b.WriteString("\n" + InstClose)

	return b.String()
}

// Answer extracts the model's reply from generated text that echoes the
// prompt: everything after the last closing instruction marker.
func Answer(generated string) string {
	if i := strings.LastIndex(generated, InstClose); i >= 0 {
		generated = generated[i+len(InstClose):]
	}
	return strings.TrimSpace(generated)
}
