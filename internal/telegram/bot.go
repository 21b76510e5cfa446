package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/service"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const pendingListLimit = 20

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Bot posts payout activity to the operator chat and answers operator
// commands there.
type Bot struct {
	bot       *tele.Bot
	send      sender
	chatID    int64
	payoutSvc *service.PayoutService
}

func NewBot(cfg *config.Config, payoutSvc *service.PayoutService) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &tele.LongPoller{Timeout: 60 * time.Second},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:       bot,
		send:      bot,
		chatID:    cfg.Telegram.OperatorChatID,
		payoutSvc: payoutSvc,
	}

	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/pending", b.handlePending)
}

func (b *Bot) StartPolling(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	b.bot.Start()
}

func (b *Bot) GetBotUsername() string {
	return b.bot.Me.Username
}

func (b *Bot) isOperator(c tele.Context) bool {
	return c.Chat() != nil && c.Chat().ID == b.chatID
}

func (b *Bot) handleStart(c tele.Context) error {
	if !b.isOperator(c) {
		return c.Send(fmt.Sprintf("This bot only serves the operator chat. Your chat id is <code>%d</code>.", c.Chat().ID), tele.ModeHTML)
	}
	return c.Send("Payout notifications are enabled for this chat.\n\n/pending lists payouts waiting for review.")
}

func (b *Bot) handlePending(c tele.Context) error {
	if !b.isOperator(c) {
		return nil
	}

	status := model.PayoutStatusPending
	payouts, err := b.payoutSvc.ListPayouts(context.Background(), &status, pendingListLimit, 0)
	if err != nil {
		logger.Log.Error("failed to list pending payouts", zap.Error(err))
		return c.Send("Failed to load pending payouts.")
	}
	return c.Send(formatPending(payouts), tele.ModeHTML)
}

// NotifyPayoutRequested implements service.PayoutNotifier
func (b *Bot) NotifyPayoutRequested(payout *model.PayoutRequest, username string) error {
	return b.sendOperator(formatPayoutRequested(payout, username))
}

// NotifyPayoutStatus implements service.PayoutNotifier
func (b *Bot) NotifyPayoutStatus(payout *model.PayoutRequest, from model.PayoutStatus) error {
	return b.sendOperator(formatPayoutStatus(payout, from))
}

func (b *Bot) sendOperator(text string) error {
	if b.chatID == 0 {
		return nil
	}
	_, err := b.send.Send(tele.ChatID(b.chatID), text, tele.ModeHTML)
	return err
}

func formatPayoutRequested(p *model.PayoutRequest, username string) string {
	return fmt.Sprintf(`💸 <b>New payout request</b>

User: %s (#%d)
Amount: <b>%s</b>
Bank: %s
Account: <code>%s</code> (%s)
ID: <code>%s</code>`,
		html.EscapeString(username), p.UserID,
		p.Amount.StringFixed(2),
		html.EscapeString(bankName(p.BankName)),
		html.EscapeString(p.AccountNumber), html.EscapeString(p.AccountName),
		p.ID)
}

func formatPayoutStatus(p *model.PayoutRequest, from model.PayoutStatus) string {
	return fmt.Sprintf(`%s <b>Payout %s</b>

Amount: %s
Status: %s → <b>%s</b>
ID: <code>%s</code>`,
		statusIcon(p.Status), p.Status,
		p.Amount.StringFixed(2),
		from, p.Status,
		p.ID)
}

func formatPending(payouts []model.PayoutWithUser) string {
	if len(payouts) == 0 {
		return "No pending payouts."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Pending payouts (%d)</b>\n", len(payouts))
	for _, p := range payouts {
		fmt.Fprintf(&sb, "\n• %s: <b>%s</b> to %s <code>%s</code>, %s",
			html.EscapeString(p.Username),
			p.Amount.StringFixed(2),
			html.EscapeString(bankName(p.BankName)),
			html.EscapeString(p.AccountNumber),
			p.CreatedAt.Format("02.01.2006 15:04"))
	}
	return sb.String()
}

func bankName(code string) string {
	for _, bank := range model.Banks {
		if bank.Code == code {
			return bank.Name
		}
	}
	return code
}

func statusIcon(s model.PayoutStatus) string {
	switch s {
	case model.PayoutStatusPaid:
		return "✅"
	case model.PayoutStatusRejected:
		return "❌"
	case model.PayoutStatusProcessing:
		return "⏳"
	}
	return "🕓"
}
