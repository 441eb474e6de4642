package domain

import "time"

type Stage string

const (
	StageIntake Stage = "intake"
	StageRefine Stage = "refine"
	StageChat   Stage = "chat"
)

// Session is the whole per-visitor state. It is owned by a single store
// entry and rewritten on every user action.
type Session struct {
	ID        string        `json:"id"`
	Profile   TripProfile   `json:"profile"`
	Messages  []ChatMessage `json:"messages"`
	Itinerary *Itinerary    `json:"itinerary,omitempty"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Stage is derived from the data rather than stored, so a session can be
// sent back to Intake by simply resubmitting the first form.
func (s *Session) Stage() Stage {
	switch {
	case len(s.Messages) > 0:
		return StageChat
	case s.Profile.Destination != "":
		return StageRefine
	default:
		return StageIntake
	}
}

func (s *Session) CanRefine() bool {
	return s.Profile.Destination != ""
}

func (s *Session) CanChat() bool {
	return len(s.Messages) > 0
}

// Clone returns a copy that shares no slices or pointers with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Profile.Interests = append([]Interest(nil), s.Profile.Interests...)
	c.Messages = append([]ChatMessage(nil), s.Messages...)
	if s.Itinerary != nil {
		it := *s.Itinerary
		c.Itinerary = &it
	}
	return &c
}
