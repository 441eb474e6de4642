package domain

import (
	"strings"

	"github.com/samber/lo"
)

type Budget string

const (
	BudgetLow    Budget = "Low"
	BudgetMedium Budget = "Medium"
	BudgetHigh   Budget = "High"
)

var Budgets = []Budget{BudgetLow, BudgetMedium, BudgetHigh}

type Interest string

const (
	InterestAdventure Interest = "Adventure"
	InterestFood      Interest = "Food"
	InterestHistory   Interest = "History"
	InterestArt       Interest = "Art"
	InterestNature    Interest = "Nature"
)

var Interests = []Interest{InterestAdventure, InterestFood, InterestHistory, InterestArt, InterestNature}

type Diet string

const (
	DietNone       Diet = "None"
	DietVegetarian Diet = "Vegetarian"
	DietVegan      Diet = "Vegan"
	DietGlutenFree Diet = "Gluten-free"
)

var Diets = []Diet{DietNone, DietVegetarian, DietVegan, DietGlutenFree}

type Mobility string

const (
	MobilityLow      Mobility = "Low (prefer less walking)"
	MobilityModerate Mobility = "Moderate"
	MobilityHigh     Mobility = "High (love walking)"
)

var Mobilities = []Mobility{MobilityLow, MobilityModerate, MobilityHigh}

const (
	MinDuration = 1
	MaxDuration = 30
)

// TripProfile is filled in two steps: Intake sets the first four fields,
// Refinement sets Diet and Mobility. An empty Diet means no dietary
// preference was asked for.
type TripProfile struct {
	Destination string     `json:"destination"`
	Duration    int        `json:"duration"`
	Budget      Budget     `json:"budget"`
	Interests   []Interest `json:"interests"`
	Diet        Diet       `json:"diet,omitempty"`
	Mobility    Mobility   `json:"mobility,omitempty"`
}

func (p TripProfile) HasInterest(i Interest) bool {
	return lo.Contains(p.Interests, i)
}

// WantsDiet reports whether a dietary preference belongs to this profile.
func (p TripProfile) WantsDiet() bool {
	return p.HasInterest(InterestFood)
}

// DietOrNone is the diet as it should appear in prompts.
func (p TripProfile) DietOrNone() Diet {
	d, _ := lo.Coalesce(p.Diet, DietNone)
	return d
}

func (p TripProfile) InterestList() string {
	return strings.Join(lo.Map(p.Interests, func(i Interest, _ int) string { return string(i) }), ", ")
}

type Intake struct {
	Destination string
	Duration    int
	Budget      Budget
	Interests   []Interest
}

type Refinement struct {
	Diet     Diet
	Mobility Mobility
}

func ParseBudget(s string) (Budget, bool) {
	return lo.Find(Budgets, func(b Budget) bool { return string(b) == s })
}

func ParseInterest(s string) (Interest, bool) {
	return lo.Find(Interests, func(i Interest) bool { return string(i) == s })
}

func ParseDiet(s string) (Diet, bool) {
	return lo.Find(Diets, func(d Diet) bool { return string(d) == s })
}

func ParseMobility(s string) (Mobility, bool) {
	return lo.Find(Mobilities, func(m Mobility) bool { return string(m) == s })
}
