package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openhealthcare/openehr-api/pkg/messaging"
	"github.com/openhealthcare/openehr-api/pkg/messaging/redis"
	"github.com/openhealthcare/openehr-api/pkg/metrics"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published record events",
	}

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print record events from the broker until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			eventType, _ := cmd.Flags().GetString("type")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			broker, err := redis.NewRedisBroker(ctx, cfg.ToBrokerConfig(), log.Logger, metrics.NewNop())
			if err != nil {
				return err
			}
			adapter := messaging.NewBrokerAdapter(broker)
			defer adapter.Close()

			log.Info().Str("channel", cfg.Redis.Channel).Msg("Tailing record events")
			err = adapter.Subscribe(ctx, cfg.Redis.Channel, func(msg messaging.Message) error {
				if eventType != "" && msg.Type != eventType {
					return nil
				}
				log.Info().
					Str("id", msg.ID.String()).
					Str("type", msg.Type).
					Time("occurred_at", msg.OccurredAt).
					RawJSON("payload", msg.Payload).
					Msg("Record event")
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	tailCmd.Flags().String("type", "", "Only print events of this type, e.g. BODY_SITE_CREATE")

	cmd.AddCommand(tailCmd)
	return cmd
}
