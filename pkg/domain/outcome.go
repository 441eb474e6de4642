package domain

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Outcome is what every planner operation hands back to a surface: the
// session after the action plus anything the user should be told about it.
type Outcome struct {
	Session *Session `json:"session"`
	Notices []Notice `json:"notices,omitempty"`
}

func (o *Outcome) Success(text string) {
	o.Notices = append(o.Notices, Notice{Level: NoticeSuccess, Text: text})
}

func (o *Outcome) Error(err error) {
	o.Notices = append(o.Notices, Notice{Level: NoticeError, Text: err.Error()})
}
