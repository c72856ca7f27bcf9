package events

import (
	"encoding/json"
	"fmt"

	"walletreg/internal/registry/models"
)

const aggregateWallet = "wallet"

// Message is one notification ready for the broker.
type Message struct {
	Key       string
	EventType string
	Payload   []byte
}

// NewMessage encodes a notification. The key is the wallet address so all
// notifications for one wallet land on the same partition, in order.
func NewMessage(event models.WalletVerified) (Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", models.EventWalletVerified, err)
	}
	return Message{
		Key:       event.WalletAddress.String(),
		EventType: models.EventWalletVerified,
		Payload:   payload,
	}, nil
}

// DecodeWalletVerified parses a payload produced by NewMessage.
func DecodeWalletVerified(payload []byte) (models.WalletVerified, error) {
	var event models.WalletVerified
	if err := json.Unmarshal(payload, &event); err != nil {
		return models.WalletVerified{}, fmt.Errorf("unmarshal %s payload: %w", models.EventWalletVerified, err)
	}
	return event, nil
}
