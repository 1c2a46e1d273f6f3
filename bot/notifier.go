// Package bot sends admin notifications to a Telegram chat.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"meal-admin/config"
	"meal-admin/models"
	"meal-admin/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	kindMenuFinalized = "menu_finalized"
	kindPayment       = "payment"
)

// Notifier reports admin-relevant events. Implementations must not fail the caller.
type Notifier interface {
	MenuFinalized(ctx context.Context, menuID, completed int64)
	PaymentRecorded(ctx context.Context, userID int64, res *models.PaymentResult)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    sender
	chatID int64
	log    *logrus.Entry
}

func NewTelegram(cfg config.TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" || cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("telegram token and admin chat id are required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newTelegram(api, cfg.AdminChatID), nil
}

func newTelegram(api sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID, log: logrus.WithField("component", "telegram")}
}

func (t *Telegram) MenuFinalized(ctx context.Context, menuID, completed int64) {
	menu, err := services.GetMenu(ctx, menuID)
	if err != nil {
		t.log.WithError(err).WithField("menu_id", menuID).Warn("load finalized menu")
		return
	}
	t.notify(ctx, kindMenuFinalized, strconv.FormatInt(menuID, 10), MenuFinalizedText(menu, completed))
}

func (t *Telegram) PaymentRecorded(ctx context.Context, userID int64, res *models.PaymentResult) {
	if res == nil || res.PaidCount == 0 {
		return
	}
	user, err := services.GetUser(ctx, userID)
	if err != nil {
		t.log.WithError(err).WithField("user_id", userID).Warn("load paying employee")
		user = &models.User{ID: userID, EmployeeCode: "#" + strconv.FormatInt(userID, 10)}
	}
	t.notify(ctx, kindPayment, paymentKey(userID, res), PaymentText(user, res))
}

// paymentKey identifies a payment by the orders it settled, so two batches
// with equal totals are still told apart.
func paymentKey(userID int64, res *models.PaymentResult) string {
	ids := append([]int64(nil), res.PaidOrderIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%d:%s", userID, strings.Join(parts, ","))
}

// notify sends text once per kind/key within the de-dup window and logs the send.
func (t *Telegram) notify(ctx context.Context, kind, key, text string) {
	log := t.log.WithFields(logrus.Fields{"kind": kind, "key": key})
	dup, err := services.SentNotificationWithin30s(ctx, kind, key)
	if err != nil {
		log.WithError(err).Warn("dedup check failed, sending anyway")
	} else if dup {
		log.Debug("duplicate notification skipped")
		return
	}

	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		log.WithError(err).Error("send notification")
		return
	}
	if err := services.SaveOutboundMessage(ctx, t.chatID, text, map[string]interface{}{
		"kind": kind,
		"key":  key,
	}); err != nil {
		log.WithError(err).Warn("save outbound message")
	}
}

// Noop is used when no Telegram bot is configured.
type Noop struct{}

func (Noop) MenuFinalized(context.Context, int64, int64) {}

func (Noop) PaymentRecorded(context.Context, int64, *models.PaymentResult) {}
