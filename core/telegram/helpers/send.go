package helpers

import (
	"bytes"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/okunev/stylebot/core/logger"
	"github.com/okunev/stylebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendPhotoBytes sends an in-memory image to the current recipient.
// Photo uploads are not retryable once the reader is consumed, so the
// reader is rebuilt on each attempt.
func SendPhotoBytes(c tele.Context, data []byte, caption string) error {
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(data)), Caption: caption}
		return c.Send(photo)
	})
}

// SendPhotoRefTo re-sends a photo already stored on Telegram servers, by
// file id, to an arbitrary recipient. Used for the admin side-channel.
func SendPhotoRefTo(c tele.Context, to int64, fileID, caption string) error {
	return sendAsync(c, "send.photo_ref", "sendPhoto", func() error {
		photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
		_, err := c.Bot().Send(tele.ChatID(to), photo)
		return err
	})
}

// SendTextTo sends text to an arbitrary recipient by user id.
func SendTextTo(c tele.Context, to int64, text string) error {
	return sendAsync(c, "send.text_to", "sendMessage", func() error {
		_, err := c.Bot().Send(tele.ChatID(to), text)
		return err
	})
}
