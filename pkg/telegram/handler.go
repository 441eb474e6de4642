package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
)

const (
	greetingText     = "Hi! I'm TravelGPT 🌍 Tell me about your trip, and I'll create a personalized itinerary!\n\nWhere do you want to go?"
	durationText     = "How many days? Send a number from %d to %d."
	budgetText       = "Budget?"
	interestsText    = "Interests? Tap to toggle, then press Done."
	dietText         = "Dietary preferences?"
	mobilityText     = "Walking tolerance?"
	chatHintText     = "Ask me anything about your trip, or send /itinerary for the full day-by-day plan."
	useButtonsText   = "Please use the buttons above."
	notReadyText     = "Let's finish planning your trip first. Send /new to start over."
	textOnlyText     = "I can only read text messages. Please type your question."
	itineraryCaption = "Your Personalized Itinerary"
)

type Planner interface {
	Session(ctx context.Context, id string) (*domain.Session, error)
	SubmitIntake(ctx context.Context, id string, in domain.Intake) (*domain.Outcome, error)
	SubmitRefinement(ctx context.Context, id string, r domain.Refinement) (*domain.Outcome, error)
	SendMessage(ctx context.Context, id, text string) (*domain.Outcome, error)
	GenerateItinerary(ctx context.Context, id string) (*domain.Outcome, error)
	Reset(ctx context.Context, id string) error
}

type WizardRepository interface {
	Save(chatID int64, wizard domain.Wizard)
	Get(chatID int64) (domain.Wizard, bool)
	Update(chatID int64, fn func(*domain.Wizard)) (domain.Wizard, bool)
	Clear(chatID int64)
}

type handler struct {
	planner    Planner
	wizards    WizardRepository
	responseCh chan<- domain.Response
}

func NewHandler(
	planner Planner,
	wizards WizardRepository,
	responseCh chan<- domain.Response,
) *handler {
	return &handler{
		planner:    planner,
		wizards:    wizards,
		responseCh: responseCh,
	}
}

func (h *handler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)

	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

// SessionID maps a telegram chat onto a planner session.
func SessionID(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}

func (h *handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if isCommand(msg.Text) {
		h.handleCommand(ctx, chatID, msg.Text)
		return
	}

	text := strings.TrimSpace(msg.Text)

	if wizard, ok := h.wizards.Get(chatID); ok {
		h.handleWizardText(ctx, chatID, wizard, text)
		return
	}

	session, err := h.planner.Session(ctx, SessionID(chatID))
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	if !session.CanChat() {
		h.startWizard(ctx, chatID)
		return
	}

	// Photos, stickers and voice notes carry no text.
	if text == "" {
		h.sendText(chatID, textOnlyText)
		return
	}

	out, err := h.planner.SendMessage(ctx, SessionID(chatID), text)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	h.sendErrorNotices(chatID, out)
	h.sendLastReply(chatID, out.Session)
}

func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

func (h *handler) handleCommand(ctx context.Context, chatID int64, text string) {
	cmd := strings.ToLower(strings.TrimSpace(text))
	cmd = strings.Split(cmd, "@")[0]

	switch cmd {
	case "/start", "/new":
		if err := h.planner.Reset(ctx, SessionID(chatID)); err != nil {
			h.sendError(ctx, chatID, err)
			return
		}
		h.startWizard(ctx, chatID)

	case "/itinerary":
		h.sendItinerary(ctx, chatID)

	default:
		slog.WarnContext(ctx, "Unhandled command", "cmd", cmd)
	}
}

func (h *handler) startWizard(ctx context.Context, chatID int64) {
	slog.InfoContext(ctx, "Starting trip wizard", "chatID", chatID)

	h.wizards.Save(chatID, domain.Wizard{Step: domain.StepDestination})
	h.sendText(chatID, greetingText)
}

func (h *handler) handleWizardText(ctx context.Context, chatID int64, wizard domain.Wizard, text string) {
	switch wizard.Step {
	case domain.StepDestination:
		if text == "" {
			h.sendText(chatID, "Where do you want to go?")
			return
		}
		wizard.Intake.Destination = text
		wizard.Step = domain.StepDuration
		h.wizards.Save(chatID, wizard)
		h.sendText(chatID, fmt.Sprintf(durationText, domain.MinDuration, domain.MaxDuration))

	case domain.StepDuration:
		days, err := strconv.Atoi(text)
		if err != nil || days < domain.MinDuration || days > domain.MaxDuration {
			h.sendText(chatID, fmt.Sprintf(durationText, domain.MinDuration, domain.MaxDuration))
			return
		}
		wizard.Intake.Duration = days
		wizard.Step = domain.StepBudget
		h.wizards.Save(chatID, wizard)
		h.sendKeyboard(chatID, optionsKeyboard(budgetText, domain.BudgetCallbackPrefix, domain.Budgets, 3))

	default:
		slog.DebugContext(ctx, "Text received while waiting for a button", "step", wizard.Step)
		h.sendText(chatID, useButtonsText)
	}
}

func (h *handler) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	wizard, ok := h.wizards.Get(chatID)
	if !ok {
		slog.WarnContext(ctx, "Callback without active wizard", "data", data)
		h.sendText(chatID, notReadyText)
		return
	}

	switch {
	case strings.HasPrefix(data, domain.BudgetCallbackPrefix) && wizard.Step == domain.StepBudget:
		budget, ok := domain.ParseBudget(strings.TrimPrefix(data, domain.BudgetCallbackPrefix))
		if !ok {
			h.sendText(chatID, useButtonsText)
			return
		}
		wizard.Intake.Budget = budget
		wizard.Step = domain.StepInterests
		h.wizards.Save(chatID, wizard)
		h.sendInterests(chatID)

	case strings.HasPrefix(data, domain.InterestCallbackPrefix) && wizard.Step == domain.StepInterests:
		interest, ok := domain.ParseInterest(strings.TrimPrefix(data, domain.InterestCallbackPrefix))
		if !ok {
			h.sendText(chatID, useButtonsText)
			return
		}
		wizard, ok = h.wizards.Update(chatID, func(w *domain.Wizard) {
			if w.Step == domain.StepInterests {
				w.Intake.Interests = toggle(w.Intake.Interests, interest)
			}
		})
		if !ok {
			h.sendText(chatID, notReadyText)
			return
		}
		h.sendText(chatID, selectedInterestsText(wizard.Intake.Interests))

	case data == domain.InterestsDoneCallback && wizard.Step == domain.StepInterests:
		h.submitIntake(ctx, chatID, wizard)

	case strings.HasPrefix(data, domain.DietCallbackPrefix) && wizard.Step == domain.StepDiet:
		diet, ok := domain.ParseDiet(strings.TrimPrefix(data, domain.DietCallbackPrefix))
		if !ok {
			h.sendText(chatID, useButtonsText)
			return
		}
		wizard.Diet = diet
		wizard.Step = domain.StepMobility
		h.wizards.Save(chatID, wizard)
		h.sendKeyboard(chatID, optionsKeyboard(mobilityText, domain.MobilityCallbackPrefix, domain.Mobilities, 1))

	case strings.HasPrefix(data, domain.MobilityCallbackPrefix) && wizard.Step == domain.StepMobility:
		mobility, ok := domain.ParseMobility(strings.TrimPrefix(data, domain.MobilityCallbackPrefix))
		if !ok {
			h.sendText(chatID, useButtonsText)
			return
		}
		h.submitRefinement(ctx, chatID, domain.Refinement{Diet: wizard.Diet, Mobility: mobility})

	default:
		slog.WarnContext(ctx, "Unhandled callback", "data", data, "step", wizard.Step)
		h.sendText(chatID, useButtonsText)
	}
}

func (h *handler) submitIntake(ctx context.Context, chatID int64, wizard domain.Wizard) {
	out, err := h.planner.SubmitIntake(ctx, SessionID(chatID), wizard.Intake)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	h.sendNotices(chatID, out)

	if out.Session.Profile.WantsDiet() {
		wizard.Step = domain.StepDiet
		h.wizards.Save(chatID, wizard)
		h.sendKeyboard(chatID, optionsKeyboard(dietText, domain.DietCallbackPrefix, domain.Diets, 2))
		return
	}

	wizard.Step = domain.StepMobility
	h.wizards.Save(chatID, wizard)
	h.sendKeyboard(chatID, optionsKeyboard(mobilityText, domain.MobilityCallbackPrefix, domain.Mobilities, 1))
}

func (h *handler) submitRefinement(ctx context.Context, chatID int64, r domain.Refinement) {
	out, err := h.planner.SubmitRefinement(ctx, SessionID(chatID), r)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	h.wizards.Clear(chatID)

	h.sendNotices(chatID, out)
	h.sendLastReply(chatID, out.Session)
	h.sendText(chatID, chatHintText)
}

func (h *handler) sendItinerary(ctx context.Context, chatID int64) {
	out, err := h.planner.GenerateItinerary(ctx, SessionID(chatID))
	if errors.Is(err, domain.ErrStageNotReached) {
		h.sendText(chatID, notReadyText)
		return
	}
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	h.sendErrorNotices(chatID, out)

	it := out.Session.Itinerary
	h.responseCh <- domain.Response{
		ChatID: chatID,
		Text:   itineraryCaption,
		File: &domain.File{
			Name: it.FileName(),
			Data: []byte(it.Content),
		},
	}
}

func (h *handler) sendInterests(chatID int64) {
	kb := optionsKeyboard(interestsText, domain.InterestCallbackPrefix, domain.Interests, 3)
	kb.Buttons = append(kb.Buttons, domain.Button{Label: "Done ✅", Data: domain.InterestsDoneCallback})
	h.sendKeyboard(chatID, kb)
}

func (h *handler) sendKeyboard(chatID int64, kb *domain.Keyboard) {
	h.responseCh <- domain.Response{ChatID: chatID, Keyboard: kb}
}

func optionsKeyboard[T ~string](title, prefix string, options []T, perRow int) *domain.Keyboard {
	return &domain.Keyboard{
		Title: title,
		Buttons: lo.Map(options, func(o T, _ int) domain.Button {
			return domain.Button{Label: string(o), Data: prefix + string(o)}
		}),
		ButtonsPerRow: perRow,
	}
}

func (h *handler) sendNotices(chatID int64, out *domain.Outcome) {
	for _, n := range out.Notices {
		h.sendNotice(chatID, n)
	}
}

func (h *handler) sendErrorNotices(chatID int64, out *domain.Outcome) {
	for _, n := range out.Notices {
		if n.Level == domain.NoticeError {
			h.sendNotice(chatID, n)
		}
	}
}

func (h *handler) sendNotice(chatID int64, n domain.Notice) {
	if n.Level == domain.NoticeError {
		h.responseCh <- domain.Response{ChatID: chatID, Err: errors.New(n.Text)}
		return
	}
	h.sendText(chatID, n.Text)
}

func (h *handler) sendLastReply(chatID int64, s *domain.Session) {
	if len(s.Messages) == 0 {
		return
	}
	h.sendText(chatID, s.Messages[len(s.Messages)-1].Content)
}

func (h *handler) sendText(chatID int64, text string) {
	h.responseCh <- domain.Response{ChatID: chatID, Text: text}
}

func (h *handler) sendError(ctx context.Context, chatID int64, err error) {
	slog.ErrorContext(ctx, "Handling telegram update", "chatID", chatID, logger.Err(err))
	h.responseCh <- domain.Response{ChatID: chatID, Err: err}
}

func toggle(interests []domain.Interest, i domain.Interest) []domain.Interest {
	if lo.Contains(interests, i) {
		return lo.Without(interests, i)
	}
	return append(append([]domain.Interest(nil), interests...), i)
}

func selectedInterestsText(interests []domain.Interest) string {
	if len(interests) == 0 {
		return "No interests selected yet."
	}
	return "Selected: " + domain.TripProfile{Interests: interests}.InterestList()
}
