package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"racebot/service"
	tg_api "racebot/telegram"
	vk_api "racebot/vk"
)

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the VK and Telegram bots",
		Long: `Run the VK and Telegram bots. The tokens are read from RACEVK_BOT,
USERTOKEN_VK and RACETG_BOT.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runBots(ctx)
		},
	}
}

func (a *app) runBots(ctx context.Context) error {
	defer a.close()

	if err := a.cfg.RequireBots(); err != nil {
		return err
	}

	ergastAPI, err := a.gateway()
	if err != nil {
		return err
	}
	serviceF1 := service.NewServiceF1(ergastAPI, service.WithLogger(a.logger))

	vkAPI, err := vk_api.NewVKAPI(a.cfg.Bots.VkGroupToken, serviceF1, serviceF1, a.logger.With("bot", "vk"))
	if err != nil {
		return fmt.Errorf("error vkApi object: %w", err)
	}

	tgAPI, err := tg_api.NewTGAPI(a.cfg.Bots.TgChatToken, serviceF1, a.logger.With("bot", "telegram"))
	if err != nil {
		return fmt.Errorf("error tgApi object: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return vkAPI.Run(gctx) })
	g.Go(func() error { return tgAPI.Run(gctx) })
	return g.Wait()
}
