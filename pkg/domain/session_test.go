package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStage(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    Stage
	}{
		{name: "empty", session: Session{}, want: StageIntake},
		{name: "destination set", session: Session{Profile: TripProfile{Destination: "Kyoto"}}, want: StageRefine},
		{
			name: "transcript started",
			session: Session{
				Profile:  TripProfile{Destination: "Kyoto"},
				Messages: []ChatMessage{{Role: RoleAssistant, Content: "hi"}},
			},
			want: StageChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Stage())
		})
	}
}

func TestSessionClone(t *testing.T) {
	s := &Session{
		ID:        "s1",
		Profile:   TripProfile{Destination: "Kyoto", Interests: []Interest{InterestFood}},
		Messages:  []ChatMessage{{Role: RoleAssistant, Content: "hi"}},
		Itinerary: &Itinerary{Destination: "Kyoto", Content: "## Day 1"},
	}

	c := s.Clone()
	c.Profile.Interests[0] = InterestArt
	c.Messages[0].Content = "changed"
	c.Itinerary.Content = "changed"

	assert.Equal(t, InterestFood, s.Profile.Interests[0])
	assert.Equal(t, "hi", s.Messages[0].Content)
	assert.Equal(t, "## Day 1", s.Itinerary.Content)
}

func TestTripProfile(t *testing.T) {
	p := TripProfile{Interests: []Interest{InterestFood, InterestHistory}}

	assert.True(t, p.WantsDiet())
	assert.Equal(t, DietNone, p.DietOrNone())
	assert.Equal(t, "Food, History", p.InterestList())

	p.Diet = DietGlutenFree
	assert.Equal(t, DietGlutenFree, p.DietOrNone())

	assert.False(t, TripProfile{Interests: []Interest{InterestArt}}.WantsDiet())
}

func TestParseEnums(t *testing.T) {
	m, ok := ParseMobility("Low (prefer less walking)")
	assert.True(t, ok)
	assert.Equal(t, MobilityLow, m)

	_, ok = ParseBudget("Cheap")
	assert.False(t, ok)

	d, ok := ParseDiet("Gluten-free")
	assert.True(t, ok)
	assert.Equal(t, DietGlutenFree, d)
}

func TestItineraryFileName(t *testing.T) {
	assert.Equal(t, "Kyoto_itinerary.md", Itinerary{Destination: "Kyoto"}.FileName())
}
