package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/prompt"
	"github.com/dskvich/trip-planner/pkg/repository"
	"github.com/dskvich/trip-planner/pkg/services"
)

const testChatID int64 = 42

type fakeProvider struct {
	err error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, p prompt.Prompt) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if p.Context == "" {
		return "## Day 1\n**Morning:** Temples", nil
	}
	return "Sounds like a great trip!", nil
}

type testBot struct {
	handler    *handler
	planner    Planner
	wizards    WizardRepository
	responseCh chan domain.Response
}

func newTestBot(t *testing.T, provider *fakeProvider) *testBot {
	t.Helper()

	planner := services.NewPlannerService(
		repository.NewMemorySessionRepository(0),
		nil,
		services.NewCompletionService(provider),
	)
	wizards := repository.NewWizardRepository(time.Hour)
	responseCh := make(chan domain.Response, 32)

	return &testBot{
		handler:    NewHandler(planner, wizards, responseCh),
		planner:    planner,
		wizards:    wizards,
		responseCh: responseCh,
	}
}

func (b *testBot) text(text string) []domain.Response {
	b.handler.HandleUpdate(context.Background(), &tgbotapi.Update{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}, Text: text},
	})
	return b.drain()
}

func (b *testBot) press(data string) []domain.Response {
	b.handler.HandleUpdate(context.Background(), &tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			Data:    data,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
		},
	})
	return b.drain()
}

func (b *testBot) drain() []domain.Response {
	var out []domain.Response
	for {
		select {
		case r := <-b.responseCh:
			out = append(out, r)
		default:
			return out
		}
	}
}

func TestWizardFlow(t *testing.T) {
	ctx := context.Background()
	bot := newTestBot(t, &fakeProvider{})

	resp := bot.text("/start")
	require.Len(t, resp, 1)
	assert.Equal(t, greetingText, resp[0].Text)

	resp = bot.text("Kyoto")
	require.Len(t, resp, 1)
	assert.Contains(t, resp[0].Text, "How many days?")

	resp = bot.text("forty")
	require.Len(t, resp, 1)
	assert.Contains(t, resp[0].Text, "How many days?")

	resp = bot.text("3")
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].Keyboard)
	assert.Equal(t, budgetText, resp[0].Keyboard.Title)
	assert.Len(t, resp[0].Keyboard.Buttons, 3)

	resp = bot.press(domain.BudgetCallbackPrefix + "Medium")
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].Keyboard)
	assert.Len(t, resp[0].Keyboard.Buttons, len(domain.Interests)+1)

	bot.press(domain.InterestCallbackPrefix + "Food")
	bot.press(domain.InterestCallbackPrefix + "Art")
	resp = bot.press(domain.InterestCallbackPrefix + "Art")
	require.Len(t, resp, 1)
	assert.Equal(t, "Selected: Food", resp[0].Text)

	resp = bot.press(domain.InterestsDoneCallback)
	require.Len(t, resp, 2)
	assert.Equal(t, "Got it! Now let's refine your trip.", resp[0].Text)
	require.NotNil(t, resp[1].Keyboard)
	assert.Equal(t, dietText, resp[1].Keyboard.Title)

	resp = bot.press(domain.DietCallbackPrefix + "Vegan")
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].Keyboard)
	assert.Equal(t, mobilityText, resp[0].Keyboard.Title)

	resp = bot.press(domain.MobilityCallbackPrefix + "Moderate")
	require.Len(t, resp, 3)
	assert.Equal(t, "Perfect! Let's chat about your trip details.", resp[0].Text)
	assert.Equal(t, "Sounds like a great trip!", resp[1].Text)
	assert.Equal(t, chatHintText, resp[2].Text)

	_, ok := bot.wizards.Get(testChatID)
	assert.False(t, ok, "wizard is cleared once the trip is refined")

	s, err := bot.planner.Session(ctx, SessionID(testChatID))
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", s.Profile.Destination)
	assert.Equal(t, 3, s.Profile.Duration)
	assert.Equal(t, domain.BudgetMedium, s.Profile.Budget)
	assert.Equal(t, []domain.Interest{domain.InterestFood}, s.Profile.Interests)
	assert.Equal(t, domain.DietVegan, s.Profile.Diet)
	assert.Equal(t, domain.MobilityModerate, s.Profile.Mobility)

	resp = bot.text("Any ramen places?")
	require.Len(t, resp, 1)
	assert.Equal(t, "Sounds like a great trip!", resp[0].Text)

	resp = bot.text("/itinerary")
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].File)
	assert.Equal(t, "Kyoto_itinerary.md", resp[0].File.Name)
	assert.Equal(t, "## Day 1\n**Morning:** Temples", string(resp[0].File.Data))
}

func TestWizardSkipsDietWithoutFood(t *testing.T) {
	bot := newTestBot(t, &fakeProvider{})

	bot.text("/new")
	bot.text("Lisbon")
	bot.text("2")
	bot.press(domain.BudgetCallbackPrefix + "Low")
	bot.press(domain.InterestCallbackPrefix + "History")

	resp := bot.press(domain.InterestsDoneCallback)
	require.Len(t, resp, 2)
	require.NotNil(t, resp[1].Keyboard)
	assert.Equal(t, mobilityText, resp[1].Keyboard.Title)

	resp = bot.press(domain.DietCallbackPrefix + "Vegan")
	require.Len(t, resp, 1)
	assert.Equal(t, useButtonsText, resp[0].Text)
}

func TestWizardCompletionFailure(t *testing.T) {
	bot := newTestBot(t, &fakeProvider{err: errors.New("503 Service Unavailable")})

	bot.text("/start")
	bot.text("Kyoto")
	bot.text("3")
	bot.press(domain.BudgetCallbackPrefix + "High")
	bot.press(domain.InterestsDoneCallback)

	resp := bot.press(domain.MobilityCallbackPrefix + "Moderate")
	require.Len(t, resp, 4)
	require.Error(t, resp[0].Err)
	assert.Contains(t, resp[0].Err.Error(), domain.ErrCompletionUnavailable.Error())
	assert.Equal(t, "Perfect! Let's chat about your trip details.", resp[1].Text)
	assert.Equal(t, domain.CompletionFallback, resp[2].Text)
}

func TestNonTextMessageInChatIsNotSent(t *testing.T) {
	ctx := context.Background()
	bot := newTestBot(t, &fakeProvider{})

	bot.text("/start")
	bot.text("Kyoto")
	bot.text("3")
	bot.press(domain.BudgetCallbackPrefix + "Low")
	bot.press(domain.InterestsDoneCallback)
	bot.press(domain.MobilityCallbackPrefix + "Moderate")

	resp := bot.text("")
	require.Len(t, resp, 1)
	assert.Equal(t, textOnlyText, resp[0].Text)

	resp = bot.text("   ")
	require.Len(t, resp, 1)
	assert.Equal(t, textOnlyText, resp[0].Text)

	s, err := bot.planner.Session(ctx, SessionID(testChatID))
	require.NoError(t, err)
	assert.Len(t, s.Messages, 1, "transcript only holds the seeded reply")
}

func TestTextBeforeWizardStartsIt(t *testing.T) {
	bot := newTestBot(t, &fakeProvider{})

	resp := bot.text("hello")
	require.Len(t, resp, 1)
	assert.Equal(t, greetingText, resp[0].Text)

	w, ok := bot.wizards.Get(testChatID)
	require.True(t, ok)
	assert.Equal(t, domain.StepDestination, w.Step)
}

func TestItineraryBeforeChat(t *testing.T) {
	bot := newTestBot(t, &fakeProvider{})

	resp := bot.text("/itinerary")
	require.Len(t, resp, 1)
	assert.Equal(t, notReadyText, resp[0].Text)
}

func TestCallbackWithoutWizard(t *testing.T) {
	bot := newTestBot(t, &fakeProvider{})

	resp := bot.press(domain.BudgetCallbackPrefix + "Low")
	require.Len(t, resp, 1)
	assert.Equal(t, notReadyText, resp[0].Text)
}

func TestToInlineKeyboard(t *testing.T) {
	kb := optionsKeyboard("Budget?", domain.BudgetCallbackPrefix, domain.Budgets, 2)

	markup := toInlineKeyboard(kb)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 1)
	assert.Equal(t, "Low", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "budget_Low", *markup.InlineKeyboard[0][0].CallbackData)
}
