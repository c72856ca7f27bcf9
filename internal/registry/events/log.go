package events

import (
	"context"
	"log/slog"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	"walletreg/pkg/requestcontext"
)

var _ service.EventSink = (*LogSink)(nil)

// LogSink writes each notification as one structured log line and keeps
// nothing. It is the sink of a server with neither a database nor a broker.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, event models.WalletVerified) error {
	s.logger.InfoContext(ctx, "wallet verification notification",
		"event_id", event.ID.String(),
		"wallet_address", event.WalletAddress.String(),
		"risk_score", event.RiskScore,
		"risk_level", event.RiskLevel.String(),
		"verified_by", event.VerifiedBy.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
