package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/okunev/stylebot/core/logger"
	tghelpers "github.com/okunev/stylebot/core/telegram/helpers"
	"github.com/okunev/stylebot/core/telegram/keyboard"
	"github.com/okunev/stylebot/policy"

	tele "gopkg.in/telebot.v4"
)

const maxPhotoBytes = 20 << 20

var errNoFileAPI = errors.New("bot not started, file api unavailable")

func (a *App) handleStart(c tele.Context) error {
	kb := keyboard.ReplyButtons(a.catalog.Names(), 2)
	return tghelpers.SendText(c,
		msgWelcome(a.catalog.Names(), a.cfg.Payment.EntitlementHours),
		&tele.SendOptions{ReplyMarkup: kb},
	)
}

func (a *App) handlePay(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := a.store.SetAwaitingProof(ctx, senderID(c), true); err != nil {
		return sessionFault("set awaiting flag", err)
	}
	return tghelpers.SendText(c, msgPayPrompt(a.cfg.Payment.Link))
}

// handleStyleText is the text fallback: anything that is not a command
// is treated as a style selection attempt.
func (a *App) handleStyleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	style, ok := a.catalog.Resolve(c.Text())
	if !ok {
		logger.SESS.Debug("style not resolved",
			slog.String("event", "style.unknown"),
			slog.Int64("user_id", senderID(c)),
			slog.String("payload", logger.SanitizeLimit(c.Text(), 64)),
		)
		return tghelpers.SendText(c, msgUnknownStyle(a.catalog.Names()))
	}

	if err := a.store.SetStyle(ctx, senderID(c), style.ID); err != nil {
		return sessionFault("set style", err)
	}

	logger.SESS.Info("style selected",
		slog.String("event", "session.style_set"),
		slog.Int64("user_id", senderID(c)),
		slog.String("style", style.ID),
	)
	return tghelpers.SendText(c, msgStyleSelected(style.Name),
		&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

func (a *App) handlePhoto(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := senderID(c)
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}

	snap, styleID, err := a.sessionSnapshot(ctx, userID)
	if err != nil {
		_ = tghelpers.SendText(c, msgTransformFailed)
		return err
	}

	decision := policy.DecidePhoto(snap)
	logger.Info(ctx, "tg", "photo.decision",
		slog.String("decision", decision.String()),
		slog.String("style", styleID),
	)

	switch decision {
	case policy.AcceptProof:
		return a.acceptProof(ctx, c, userID, msg.Photo)
	case policy.TransformKeepStyle:
		return a.transformPhoto(ctx, c, userID, msg.Photo, styleID, false)
	case policy.TransformConsumeStyle:
		return a.transformPhoto(ctx, c, userID, msg.Photo, styleID, true)
	default:
		return tghelpers.SendText(c, msgSelectStyleFirst)
	}
}

func (a *App) sessionSnapshot(ctx context.Context, userID int64) (policy.Snapshot, string, error) {
	entitled, err := a.store.IsEntitled(ctx, userID, time.Now())
	if err != nil {
		return policy.Snapshot{}, "", sessionFault("load entitlement", err)
	}
	styleID, hasStyle, err := a.store.Style(ctx, userID)
	if err != nil {
		return policy.Snapshot{}, "", sessionFault("load style", err)
	}
	awaiting, err := a.store.AwaitingProof(ctx, userID)
	if err != nil {
		return policy.Snapshot{}, "", sessionFault("load awaiting flag", err)
	}
	return policy.Snapshot{
		Entitled:      entitled,
		HasStyle:      hasStyle,
		AwaitingProof: awaiting,
	}, styleID, nil
}

// acceptProof forwards the payment receipt to the admin side-channel by
// file id, without downloading the photo.
func (a *App) acceptProof(ctx context.Context, c tele.Context, userID int64, photo *tele.Photo) error {
	if err := a.store.RecordProof(ctx, userID, photo.FileID); err != nil {
		return sessionFault("record proof", err)
	}
	if err := a.store.SetAwaitingProof(ctx, userID, false); err != nil {
		return sessionFault("clear awaiting flag", err)
	}

	logger.ADM.Info("proof forwarded",
		slog.String("event", "proof.forwarded"),
		slog.Int64("user_id", userID),
		slog.String("proof_ref", logger.SanitizeLimit(photo.FileID, 96)),
	)

	if err := tghelpers.SendPhotoRefTo(c, a.cfg.Telegram.AdminID, photo.FileID, proofCaption(userID)); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgProofReceived)
}

func (a *App) transformPhoto(ctx context.Context, c tele.Context, userID int64, photo *tele.Photo, styleID string, consume bool) error {
	img, err := a.fetchPhoto(c, photo)
	if err != nil {
		// Selection stays; the user resends.
		_ = tghelpers.SendText(c, msgFetchFailed)
		return fileFetchFault(err)
	}

	timeout := time.Duration(a.cfg.Transform.TimeoutSeconds) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := a.gateway.Transform(callCtx, img, styleID)
	if err != nil {
		// Selection stays on failure as well.
		_ = tghelpers.SendText(c, msgTransformFailed)
		return err
	}

	if err := tghelpers.SendPhotoBytes(c, out, ""); err != nil {
		return err
	}

	if !consume {
		return nil
	}
	if err := a.store.ClearStyle(ctx, userID); err != nil {
		return sessionFault("clear style", err)
	}
	logger.SESS.Info("free use spent",
		slog.String("event", "session.style_consumed"),
		slog.Int64("user_id", userID),
		slog.String("style", styleID),
	)
	return tghelpers.SendText(c, msgFreeUseSpent(a.cfg.Payment.Link, a.cfg.Payment.EntitlementHours))
}

func (a *App) fetchPhoto(_ tele.Context, photo *tele.Photo) ([]byte, error) {
	files := a.files
	if files == nil {
		return nil, errNoFileAPI
	}
	rc, err := files.File(&photo.File)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPhotoBytes))
	if err != nil {
		return nil, err
	}
	return data, nil
}
