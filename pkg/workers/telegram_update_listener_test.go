package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
)

type fakeClient struct {
	updates chan tgbotapi.Update

	mu        sync.Mutex
	sent      []domain.Response
	acked     []string
	typingFor []int64
}

func (f *fakeClient) GetUpdates() tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeClient) SendResponse(_ context.Context, r *domain.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *r)
}

func (f *fakeClient) AcknowledgeCallback(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, id)
}

func (f *fakeClient) StartTyping(_ context.Context, chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typingFor = append(f.typingFor, chatID)
}

func (f *fakeClient) sentResponses() []domain.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Response(nil), f.sent...)
}

type allowList map[int64]bool

func (a allowList) IsAuthorized(userID int64) bool { return a[userID] }

type echoHandler struct {
	responseCh chan<- domain.Response
}

func (e *echoHandler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	reqID, _ := logger.RequestIDFromContext(ctx)
	e.responseCh <- domain.Response{ChatID: update.Message.Chat.ID, Text: update.Message.Text + " " + reqID}
}

func message(updateID int, userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestTelegramUpdateListener(t *testing.T) {
	client := &fakeClient{updates: make(chan tgbotapi.Update)}
	responseCh := make(chan domain.Response)

	listener, err := NewTelegramUpdateListener(client, allowList{1: true}, &echoHandler{responseCh: responseCh}, responseCh)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Start(ctx) }()

	client.updates <- message(10, 1, "hello")
	client.updates <- message(11, 2, "intruder")

	require.Eventually(t, func() bool { return len(client.sentResponses()) == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	texts := make(map[int64]string)
	for _, r := range client.sentResponses() {
		texts[r.ChatID] = r.Text
	}
	assert.Equal(t, "hello tg-10", texts[1])
	assert.Equal(t, "User ID 2 is not authorized", texts[2])
}

func TestTelegramUpdateListenerAcknowledgesCallbacks(t *testing.T) {
	client := &fakeClient{updates: make(chan tgbotapi.Update)}
	responseCh := make(chan domain.Response)

	listener, err := NewTelegramUpdateListener(client, allowList{}, &echoHandler{responseCh: responseCh}, responseCh)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Start(ctx) }()

	client.updates <- tgbotapi.Update{
		UpdateID: 12,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: 3},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 3}},
			Data:    domain.BudgetCallbackPrefix + "Low",
		},
	}

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return len(client.acked) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"cb-1"}, client.acked)
}
