package main

import (
	"log"

	"github.com/okunev/stylebot/bot"
	"github.com/okunev/stylebot/core/buildinfo"
	"github.com/okunev/stylebot/core/cmd"
	coreconfig "github.com/okunev/stylebot/core/config"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	log.Printf("stylebot %s (%s, %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date)

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return configCarrier{cfg: cfg}, nil
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return bot.Bootstrap(carrier.CoreConfig())
		},
	})
	if err != nil {
		log.Fatalf("stylebot: %v", err)
	}
}
