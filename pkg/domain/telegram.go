package domain

const (
	BudgetCallbackPrefix   = "budget_"
	InterestCallbackPrefix = "interest_"
	InterestsDoneCallback  = "interests_done"
	DietCallbackPrefix     = "diet_"
	MobilityCallbackPrefix = "mobility_"
)

type WizardStep string

const (
	StepDestination WizardStep = "destination"
	StepDuration    WizardStep = "duration"
	StepBudget      WizardStep = "budget"
	StepInterests   WizardStep = "interests"
	StepDiet        WizardStep = "diet"
	StepMobility    WizardStep = "mobility"
)

// Wizard is the telegram intake draft, collected one answer at a time
// before it is submitted to the planner as complete forms.
type Wizard struct {
	Step   WizardStep
	Intake Intake
	Diet   Diet
}
