// Package events delivers WalletVerified notifications.
//
// Sinks implement service.EventSink. The outbox sink writes inside the store
// transaction carried on the context, and the relay later publishes committed
// rows to Kafka in write order. Sinks that do not join the transaction (the
// Kafka, log and recorder sinks) receive notifications only after commit.
// The Kafka sink is used when there is no database to host an outbox; the
// log sink when there is neither a database nor a broker.
package events

import (
	"context"
	"sync"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
)

var _ service.EventSink = (*Recorder)(nil)

// Recorder keeps emitted notifications in memory, in emission order.
type Recorder struct {
	mu     sync.Mutex
	events []models.WalletVerified
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, event models.WalletVerified) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (r *Recorder) Events() []models.WalletVerified {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.WalletVerified, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
