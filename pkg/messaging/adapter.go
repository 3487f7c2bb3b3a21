package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// BrokerAdapter decodes raw broker payloads into Message envelopes.
type BrokerAdapter struct {
	broker Broker
}

func NewBrokerAdapter(broker Broker) *BrokerAdapter {
	return &BrokerAdapter{broker: broker}
}

func (a *BrokerAdapter) Publish(ctx context.Context, channel string, msg Message) error {
	return a.broker.Publish(ctx, channel, msg)
}

func (a *BrokerAdapter) Close() error {
	return a.broker.Close()
}

// Subscribe calls handler for each message until ctx is done or the
// channel closes. Undecodable payloads and handler errors are logged and
// skipped.
func (a *BrokerAdapter) Subscribe(ctx context.Context, channel string, handler func(Message) error) error {
	msgChan, err := a.broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-msgChan:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Skipping undecodable message")
				continue
			}
			if err := handler(msg); err != nil {
				log.Error().Err(err).Str("event_type", msg.Type).Msg("Message handler failed")
			}
		}
	}
}
