// Package prompt builds the text sent to the completion providers.
//
// A Prompt keeps the persona, the optional context and the user request as
// separate fields. Providers decide how to lay them out: the Mistral
// instruction template for Hugging Face, system and user messages for OpenAI.
package prompt

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dskvich/trip-planner/pkg/domain"
)

const Persona = `You are TravelGPT, an expert AI travel planner. Your task:
1. Help users plan their trips by asking relevant questions
2. Generate personalized itineraries based on their preferences
3. Use a friendly, helpful tone with occasional emojis`

const InitialRequest = "Please help me plan my trip based on these details"

// ContextWindowSize is how many recent messages follow-up completions see.
const ContextWindowSize = 5

type Prompt struct {
	System  string
	Context string
	Request string
}

func New(request string) Prompt {
	return Prompt{System: Persona, Request: request}
}

func (p Prompt) WithContext(context string) Prompt {
	p.Context = context
	return p
}

// TripDetails describes the full profile as context for the first completion.
func TripDetails(p domain.TripProfile) string {
	return fmt.Sprintf(`I want to visit %s for %d days.
Budget: %s
Interests: %s
Dietary restrictions: %s
Mobility: %s`,
		p.Destination, p.Duration, p.Budget, p.InterestList(), p.DietOrNone(), p.Mobility)
}

// ContextWindow renders the last n messages as "role: content" lines in
// their original order.
func ContextWindow(messages []domain.ChatMessage, n int) string {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	return strings.Join(lo.Map(messages, func(m domain.ChatMessage, _ int) string {
		return fmt.Sprintf("%s: %s", m.Role, m.Content)
	}), "\n")
}

// Itinerary asks for a day-by-day schedule in a fixed markdown layout.
func Itinerary(p domain.TripProfile) string {
	return fmt.Sprintf(`Please generate a detailed %d-day itinerary for %s with:
- Daily schedule (Morning/Afternoon/Evening)
- Activities matching: %s
- Budget level: %s
- Dietary preferences: %s
- Mobility considerations: %s

Format in markdown with:
## Day 1
**Morning:** [Activity] (Duration)
**Afternoon:** [Activity]
**Evening:** [Dinner suggestion]
Travel Tip: [Helpful advice]`,
		p.Duration, p.Destination, p.InterestList(), p.Budget, p.DietOrNone(), p.Mobility)
}
