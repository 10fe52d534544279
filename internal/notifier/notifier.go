package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openbuilders/jetton-sender/internal/queue"
	"github.com/openbuilders/jetton-sender/internal/types"
)

const PatternDisbursementStatus = "disbursement-status"

// ResultNotification is the envelope published for every transfer result so
// downstream services can track payout progress.
type ResultNotification struct {
	Pattern string                `json:"pattern"`
	Data    *types.TransferResult `json:"data"`
}

type Notifier struct {
	publisher *queue.Publisher
	log       *slog.Logger
}

func New(publisher *queue.Publisher) *Notifier {
	return &Notifier{
		publisher: publisher,
		log:       slog.With("component", "notifier"),
	}
}

// NotifyResult publishes one transfer result to the disbursement queue.
func (n *Notifier) NotifyResult(ctx context.Context, result *types.TransferResult) error {
	payload := ResultNotification{
		Pattern: PatternDisbursementStatus,
		Data:    result,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling notification: %w", err)
	}

	n.log.Debug("Sending notification", "payload", jsonData)

	return n.publisher.Publish(jsonData)
}
