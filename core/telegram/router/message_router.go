package router

import (
	"time"

	tg "github.com/okunev/stylebot/core/telegram"
	"github.com/okunev/stylebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Matcher resolves free-form text into a handler. It covers parameterized
// commands that cannot be registered under a fixed endpoint.
type Matcher interface {
	Match(text string) (name string, h tele.HandlerFunc, ok bool)
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	// Dynamic is consulted before the command registry lookup.
	Dynamic     Matcher
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the handler chain for plain-text updates: dynamic
// matchers first, then registered commands, then the registry fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if opts.Dynamic != nil {
			if name, h, ok := opts.Dynamic.Match(text); ok && h != nil {
				return handleWithSummary(c, normalizeHandlerName(name), start, "", "", func() error {
					return h(c)
				})
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

// PhotoRoutes binds the registry photo handler to incoming photo updates.
func PhotoRoutes(reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if reg != nil {
			if ph := reg.PhotoHandler(); ph != nil {
				return handleWithSummary(c, "photo", start, "", "", func() error {
					return ph(c)
				})
			}
		}

		logHandlerSummary(c, "photo", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
