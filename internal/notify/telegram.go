package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"cashbox/internal/model"
)

// ChatResolver maps a merchant to its manager chat. A zero chat id means the
// merchant has no chat wired and the notification is dropped.
type ChatResolver interface {
	GetManagerChatID(ctx context.Context, clientID int64) (int64, error)
}

// botAPI is the slice of tgbotapi the notifier uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers pre-alerts and report workbooks to merchant
// manager chats. All sends go through one rate limiter so a tick over many
// merchants cannot trip the Bot API flood limits.
type TelegramNotifier struct {
	bot      botAPI
	resolver ChatResolver
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewTelegramNotifier creates a notifier on an authorized bot.
func NewTelegramNotifier(bot *tgbotapi.BotAPI, resolver ChatResolver, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:      bot,
		resolver: resolver,
		// Bot API allows ~30 messages/second overall.
		limiter: rate.NewLimiter(rate.Limit(25), 5),
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// UpcomingOperation sends the "register opens/closes in N minutes" pre-alert.
func (n *TelegramNotifier) UpcomingOperation(ctx context.Context, clientID int64, opType model.OperationType, period *model.SchedulePeriod, at time.Time) error {
	var text string
	switch opType {
	case model.OperationAutoOpen:
		text = fmt.Sprintf("Cash register opens automatically at %s (%s)",
			at.Format("15:04"), period.Name)
	case model.OperationAutoClose:
		text = fmt.Sprintf("Cash register closes automatically at %s (%s)",
			at.Format("15:04"), period.Name)
	default:
		return fmt.Errorf("unknown operation type %q", opType)
	}

	chatID, err := n.chatFor(ctx, clientID)
	if err != nil || chatID == 0 {
		return err
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send alert to chat %d: %w", chatID, err)
	}
	n.logger.Debug().
		Int64("client_id", clientID).
		Str("operation", string(opType)).
		Msg("upcoming-operation alert sent")
	return nil
}

// SendDocument delivers a generated file, typically the daily report workbook.
func (n *TelegramNotifier) SendDocument(ctx context.Context, clientID int64, fileName string, data []byte, caption string) error {
	chatID, err := n.chatFor(ctx, clientID)
	if err != nil || chatID == 0 {
		return err
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: data,
	})
	doc.Caption = caption

	if _, err := n.bot.Send(doc); err != nil {
		return fmt.Errorf("send document to chat %d: %w", chatID, err)
	}
	n.logger.Info().
		Int64("client_id", clientID).
		Str("file", fileName).
		Msg("report document sent")
	return nil
}

func (n *TelegramNotifier) chatFor(ctx context.Context, clientID int64) (int64, error) {
	chatID, err := n.resolver.GetManagerChatID(ctx, clientID)
	if err != nil {
		return 0, fmt.Errorf("resolve chat for client %d: %w", clientID, err)
	}
	if chatID == 0 {
		n.logger.Debug().Int64("client_id", clientID).Msg("no manager chat wired, dropping notification")
	}
	return chatID, nil
}
