package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
)

const deliveryFailedText = "Failed to deliver the reply, please try again."

type client struct {
	bot       *tgbotapi.BotAPI
	updatesCh tgbotapi.UpdatesChannel
}

func NewClient(token string) (*client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot api instance: %w", err)
	}

	slog.Info("Authorized on telegram", "account", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	return &client{
		bot:       bot,
		updatesCh: bot.GetUpdatesChan(u),
	}, nil
}

func (c *client) GetUpdates() tgbotapi.UpdatesChannel {
	return c.updatesCh
}

func (c *client) SendResponse(ctx context.Context, response *domain.Response) {
	msg := toChattable(response)

	if _, err := c.bot.Send(msg); err != nil {
		slog.ErrorContext(ctx, "Sending response", "chatID", response.ChatID, logger.Err(err))

		if _, err := c.bot.Send(tgbotapi.NewMessage(response.ChatID, deliveryFailedText)); err != nil {
			slog.ErrorContext(ctx, "Sending failure notification", "chatID", response.ChatID, logger.Err(err))
		}
	}
}

func (c *client) AcknowledgeCallback(ctx context.Context, callbackQueryID string) {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackQueryID, "")); err != nil {
		slog.ErrorContext(ctx, "Acknowledging callback", logger.Err(err))
	}
}

func (c *client) StartTyping(ctx context.Context, chatID int64) {
	if _, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.WarnContext(ctx, "Sending typing action", logger.Err(err))
	}
}

func toChattable(response *domain.Response) tgbotapi.Chattable {
	switch {
	case response.Err != nil:
		return tgbotapi.NewMessage(response.ChatID, "❌ "+response.Err.Error())

	case response.File != nil:
		doc := tgbotapi.NewDocument(response.ChatID, tgbotapi.FileBytes{
			Name:  response.File.Name,
			Bytes: response.File.Data,
		})
		doc.Caption = response.Text
		return doc

	case response.Keyboard != nil:
		msg := tgbotapi.NewMessage(response.ChatID, response.Keyboard.Title)
		msg.ReplyMarkup = toInlineKeyboard(response.Keyboard)
		return msg

	default:
		return tgbotapi.NewMessage(response.ChatID, response.Text)
	}
}

func toInlineKeyboard(kb *domain.Keyboard) tgbotapi.InlineKeyboardMarkup {
	buttons := lo.Map(kb.Buttons, func(b domain.Button, _ int) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data)
	})

	perRow := kb.ButtonsPerRow
	if perRow <= 0 {
		perRow = 1
	}

	return tgbotapi.NewInlineKeyboardMarkup(lo.Chunk(buttons, perRow)...)
}
