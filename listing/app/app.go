// Package app assembles the listing bot: config in, telegram run options out.
package app

import (
	"context"
	"fmt"

	"github.com/m3rciful/listingbot/core/buildinfo"
	coreconfig "github.com/m3rciful/listingbot/core/config"
	coretelegram "github.com/m3rciful/listingbot/core/telegram"
	"github.com/m3rciful/listingbot/core/telegram/commands"
	"github.com/m3rciful/listingbot/core/telegram/router"
	"github.com/m3rciful/listingbot/core/telegram/state"
	"github.com/m3rciful/listingbot/listing/draft"
	"github.com/m3rciful/listingbot/listing/flow"
	"github.com/m3rciful/listingbot/listing/publish"
	"github.com/m3rciful/listingbot/listing/quota"
	"github.com/m3rciful/listingbot/listing/stylize"
	"github.com/m3rciful/listingbot/listing/vendor"

	tele "gopkg.in/telebot.v4"
)

// Build wires the listing workflow and returns run options for the bot runtime.
func Build(cfg *coreconfig.Config) (coretelegram.RunOptions, error) {
	if cfg == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: nil config")
	}

	reg := coretelegram.NewRegistry()
	states := state.NewMemoryManager()
	drafts := draft.NewStore()
	keeper := quota.NewKeeper(cfg.Listing.MaxDaily)

	composer := &publish.Composer{
		Table:   stylize.Table(cfg.Listing.Style),
		Banners: cfg.Listing.Banners,
		Bullet:  cfg.Listing.Bullet,
		Footer:  cfg.Listing.Footer,
		Icons:   cfg.Listing.Icons,
	}
	dest := publish.Destination{
		ChatID:  cfg.Channel.ID,
		TopicID: cfg.Channel.TopicID,
	}
	publisher := publish.New(dest, cfg.Listing.PhotoURL, composer)

	engine, err := flow.New(flow.Options{
		Vendors:   vendor.ParseSet(cfg.Listing.Vendors),
		MaxItems:  cfg.Listing.MaxItems,
		Drafts:    drafts,
		Quota:     keeper,
		Publisher: publisher,
		States:    states,
	})
	if err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: build workflow: %w", err)
	}
	if err := engine.Register(reg); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: register workflow: %w", err)
	}

	reg.RegisterCommand("/version", commands.Command{
		Handler: func(c tele.Context) error {
			return c.Send(fmt.Sprintf("listingbot %s (%s) built %s",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date))
		},
		Description: "Show build information",
		AdminOnly:   true,
		Hidden:      true,
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(states, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			publisher.Bind(publish.NewBotMessenger(rt.Bot))
			return nil
		},
	}, nil
}
