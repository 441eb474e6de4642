package web

import (
	"fmt"
	"strings"

	"github.com/dskvich/trip-planner/pkg/domain"
)

type intakeForm struct {
	Destination string   `form:"destination" json:"destination"`
	Duration    int      `form:"duration" json:"duration" binding:"min=1,max=30"`
	Budget      string   `form:"budget" json:"budget" binding:"required"`
	Interests   []string `form:"interests" json:"interests"`
}

func (f intakeForm) toIntake() (domain.Intake, error) {
	budget, ok := domain.ParseBudget(f.Budget)
	if !ok {
		return domain.Intake{}, fmt.Errorf("unknown budget %q", f.Budget)
	}

	interests := make([]domain.Interest, 0, len(f.Interests))
	for _, raw := range f.Interests {
		interest, ok := domain.ParseInterest(raw)
		if !ok {
			return domain.Intake{}, fmt.Errorf("unknown interest %q", raw)
		}
		interests = append(interests, interest)
	}

	return domain.Intake{
		Destination: strings.TrimSpace(f.Destination),
		Duration:    f.Duration,
		Budget:      budget,
		Interests:   interests,
	}, nil
}

type refinementForm struct {
	Diet     string `form:"diet" json:"diet"`
	Mobility string `form:"mobility" json:"mobility" binding:"required"`
}

func (f refinementForm) toRefinement() (domain.Refinement, error) {
	var r domain.Refinement

	if f.Diet != "" {
		diet, ok := domain.ParseDiet(f.Diet)
		if !ok {
			return r, fmt.Errorf("unknown diet %q", f.Diet)
		}
		r.Diet = diet
	}

	mobility, ok := domain.ParseMobility(f.Mobility)
	if !ok {
		return r, fmt.Errorf("unknown mobility %q", f.Mobility)
	}
	r.Mobility = mobility

	return r, nil
}

type chatForm struct {
	Message string `form:"message" json:"message" binding:"required"`
}
