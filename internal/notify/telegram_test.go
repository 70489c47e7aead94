package notify

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"cashbox/internal/model"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type staticResolver map[int64]int64

func (r staticResolver) GetManagerChatID(ctx context.Context, clientID int64) (int64, error) {
	return r[clientID], nil
}

func newTestNotifier(bot botAPI, resolver ChatResolver) *TelegramNotifier {
	return &TelegramNotifier{
		bot:      bot,
		resolver: resolver,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   zerolog.Nop(),
	}
}

func TestUpcomingOperationMessage(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(bot, staticResolver{1: 777})

	period := &model.SchedulePeriod{Name: "weekday"}
	at := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	err := n.UpcomingOperation(context.Background(), 1, model.OperationAutoOpen, period, at)
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(777), msg.ChatID)
	assert.Contains(t, msg.Text, "opens automatically at 09:00")
	assert.Contains(t, msg.Text, "weekday")
}

func TestUpcomingOperationNoChatWired(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(bot, staticResolver{})

	period := &model.SchedulePeriod{Name: "weekday"}
	err := n.UpcomingOperation(context.Background(), 5, model.OperationAutoClose, period, time.Now())
	require.NoError(t, err)
	assert.Empty(t, bot.sent, "unwired merchant drops the alert silently")
}

func TestSendDocument(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(bot, staticResolver{1: 777})

	err := n.SendDocument(context.Background(), 1, "report.xlsx", []byte("data"), "Daily report")
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	doc, ok := bot.sent[0].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, "Daily report", doc.Caption)

	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "report.xlsx", file.Name)
}
