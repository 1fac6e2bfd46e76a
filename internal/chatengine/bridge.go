package chatengine

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Bridge drains a Source on a single goroutine and applies every event to
// the sink before reading the next one. The original host was event-driven
// and single-threaded; keeping one consumer preserves that ordering even
// though the SDK may deliver from multiple goroutines.
type Bridge struct {
	source Source
	sink   Sink
}

func NewBridge(source Source, sink Sink) *Bridge {
	return &Bridge{
		source: source,
		sink:   sink,
	}
}

// Run blocks until the context is cancelled or the source closes its
// channel. Per-event failures are logged and skipped; a broken event must
// not stall the stream.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-b.source.Events():
			if !ok {
				log.Info().Msg("chat engine event stream closed")
				return nil
			}
			b.dispatch(ev)
		}
	}
}

func (b *Bridge) dispatch(ev Event) {
	switch ev.Type {
	case TypeMessage:
		b.sink.IngestMessage(ev)
	case TypeChatCreated:
		if err := b.sink.NewChat(ev.Chat); err != nil {
			log.Warn().Err(err).Msg("dropping chatCreated event")
		}
	case TypeReady:
		b.sink.SetChatEngineReady()
	default:
		log.Debug().Str("type", string(ev.Type)).Msg("ignoring unknown chat engine event")
	}
}
