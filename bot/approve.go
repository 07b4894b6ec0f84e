package bot

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/okunev/stylebot/core/logger"
	tghelpers "github.com/okunev/stylebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ParseApproveCommand extracts the target user id from an
// "/approve_<id>" command. The id must be a positive decimal number
// with no trailing garbage.
func ParseApproveCommand(text string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), "/approve_")
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// approveMatcher routes "/approve_<id>" text to the grant handler.
// The id is part of the command itself, so a fixed registry endpoint
// cannot serve it.
type approveMatcher struct {
	app *App
}

func (m approveMatcher) Match(text string) (string, tele.HandlerFunc, bool) {
	target, ok := ParseApproveCommand(text)
	if !ok {
		return "", nil, false
	}
	return "approve", func(c tele.Context) error {
		return m.app.handleApprove(c, target)
	}, true
}

func (a *App) handleApprove(c tele.Context, target int64) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if sender == nil || sender.ID != a.cfg.Telegram.AdminID {
		// Not the admin: pretend the command does not exist.
		logger.ADM.Warn("approve ignored",
			slog.String("event", "approve.forbidden"),
			slog.Int64("user_id", senderID(c)),
			slog.Int64("target_id", target),
		)
		return nil
	}

	hours := a.cfg.Payment.EntitlementHours
	if err := a.store.GrantEntitlement(ctx, target, time.Duration(hours)*time.Hour); err != nil {
		return sessionFault("grant entitlement", err)
	}
	// The pending proof served its purpose.
	if err := a.store.SetAwaitingProof(ctx, target, false); err != nil {
		return sessionFault("clear awaiting flag", err)
	}

	logger.ADM.Info("entitlement granted",
		slog.String("event", "approve.granted"),
		slog.Int64("target_id", target),
		slog.String("expires_at", time.Now().Add(time.Duration(hours)*time.Hour).UTC().Format(time.RFC3339)),
	)

	if err := tghelpers.SendTextTo(c, target, msgApprovedUser(hours)); err != nil {
		logger.ADM.Warn("target notify failed",
			slog.String("event", "approve.notify_failed"),
			slog.Int64("target_id", target),
			slog.String("err", err.Error()),
		)
	}
	return tghelpers.SendText(c, msgApprovedAdmin(target, hours))
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
