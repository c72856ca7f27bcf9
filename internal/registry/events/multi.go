package events

import (
	"context"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
)

var _ service.TxEventSink = Multi(nil)

// Multi emits each notification to every sink in order and stops at the
// first error.
type Multi []service.EventSink

func (m Multi) Emit(ctx context.Context, event models.WalletVerified) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// JoinsTransaction reports true only when every non-nil member joins the
// store transaction; otherwise the whole fan-out runs after commit.
func (m Multi) JoinsTransaction() bool {
	joined := false
	for _, sink := range m {
		if sink == nil {
			continue
		}
		txSink, ok := sink.(service.TxEventSink)
		if !ok || !txSink.JoinsTransaction() {
			return false
		}
		joined = true
	}
	return joined
}
