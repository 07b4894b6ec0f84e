// Package bot wires the style-transfer handlers into the telegram
// framework: command registry, text and photo routes, middleware chain.
package bot

import (
	"context"
	"fmt"
	"io"

	coreconfig "github.com/okunev/stylebot/core/config"
	coretelegram "github.com/okunev/stylebot/core/telegram"
	"github.com/okunev/stylebot/core/telegram/commands"
	"github.com/okunev/stylebot/core/telegram/router"
	"github.com/okunev/stylebot/session"
	"github.com/okunev/stylebot/styles"
	"github.com/okunev/stylebot/transform"

	tele "gopkg.in/telebot.v4"
)

// fileAPI is the slice of the telegram client used to download photos.
type fileAPI interface {
	File(file *tele.File) (io.ReadCloser, error)
}

// App holds the bot's collaborators and builds its run options.
type App struct {
	cfg     *coreconfig.Config
	store   session.Store
	catalog *styles.Catalog
	gateway transform.Gateway

	// files is populated once the bot client exists (OnStart).
	files fileAPI
}

// New assembles the application from its collaborators.
func New(cfg *coreconfig.Config, store session.Store, catalog *styles.Catalog, gateway transform.Gateway) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	if store == nil {
		return nil, fmt.Errorf("bot: nil session store")
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("bot: empty style catalog")
	}
	if gateway == nil {
		return nil, fmt.Errorf("bot: nil transform gateway")
	}
	return &App{
		cfg:     cfg,
		store:   store,
		catalog: catalog,
		gateway: gateway,
	}, nil
}

// CoreConfig exposes the embedded core configuration.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

// Registry builds the command registry with the bot's handlers.
func (a *App) Registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "How the bot works and the list of styles",
	})
	reg.RegisterCommand("/pay", commands.Command{
		Handler:     a.handlePay,
		Description: "Unlock unlimited transforms",
	})

	reg.SetTextFallback(a.handleStyleText)
	reg.SetPhotoHandler(a.handlePhoto)

	return reg
}

// TelegramRunOptions wires the registry, routes and middleware chain
// into options consumable by RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.Registry()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		Dynamic: approveMatcher{app: a},
	})...)
	routes = append(routes, router.PhotoRoutes(reg)...)

	opts := coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.files = rt.Bot
			return nil
		},
	}
	return opts, nil
}
