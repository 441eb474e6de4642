package domain

import (
	"fmt"
	"time"
)

type Itinerary struct {
	ID          int64     `json:"id,omitempty"`
	SessionID   string    `json:"session_id"`
	Destination string    `json:"destination"`
	Duration    int       `json:"duration"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i Itinerary) FileName() string {
	return fmt.Sprintf("%s_itinerary.md", i.Destination)
}
