package disburser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbuilders/jetton-sender/internal/errors"
	"github.com/openbuilders/jetton-sender/internal/metrics"
	"github.com/openbuilders/jetton-sender/internal/types"

	"github.com/google/uuid"
	"github.com/xssnick/tonutils-go/tlb"
)

// Submitter issues a single jetton transfer and returns the transaction hash.
// The production implementation is sender.Wallet; tests inject a fake.
type Submitter interface {
	SubmitTransfer(ctx context.Context, t *types.Transfer) (string, error)
}

// Ledger durably records transfer results for manual reconciliation.
type Ledger interface {
	RecordTransfer(ctx context.Context, result *types.TransferResult) error
}

// Notifier pushes transfer results to downstream consumers.
type Notifier interface {
	NotifyResult(ctx context.Context, result *types.TransferResult) error
}

type Config struct {
	Amount      tlb.Coins
	Fee         tlb.Coins
	Sleep       time.Duration
	HaltOnError bool
	WalletHash  string
	SinkTimeout time.Duration
}

// Disburser walks an ordered destination list and issues exactly one jetton
// transfer per entry, with a fixed pause between attempts. There is no
// parallelism: transfers are serialized to respect rate limits and to keep
// the funding wallet's outgoing transaction sequencing safe.
type Disburser struct {
	config       *Config
	submitter    Submitter
	destinations []string
	ledger       Ledger
	notifier     Notifier
	log          *slog.Logger
}

// New creates a Disburser. The ledger and notifier are optional and may be
// nil.
func New(config *Config, submitter Submitter, destinations []string,
	ledger Ledger, notifier Notifier) *Disburser {
	return &Disburser{
		config:       config,
		submitter:    submitter,
		destinations: destinations,
		ledger:       ledger,
		notifier:     notifier,
		log:          slog.With("component", "disburser"),
	}
}

// Run submits one transfer per destination, in list order. A destination is
// never skipped and duplicates are not deduplicated: a repeated address gets
// a repeated transfer. The guarantee is "attempted once, in order", on-chain
// settlement is not verified here.
//
// A failed submission is logged and counted; by default the run continues
// with the next destination, with HaltOnError it aborts immediately. Either
// way Run returns a transfer error if any submission failed, so the process
// exits non-zero on partial completion.
func (d *Disburser) Run(ctx context.Context) error {
	total := len(d.destinations)

	d.log.Info(
		"Starting disbursement",
		"destinations", total,
		"amount", d.config.Amount.String(),
		"fee", d.config.Fee.String(),
		"sleep", d.config.Sleep,
		"halt_on_error", d.config.HaltOnError,
	)

	metrics.Destinations.Set(float64(total))

	var failed int

	for i, destination := range d.destinations {
		select {
		case <-ctx.Done():
			d.log.Warn(
				"Run cancelled",
				"attempted", i,
				"remaining", total-i,
			)
			return fmt.Errorf("run cancelled after %d of %d destinations: %w",
				i, total, ctx.Err())
		default:
		}

		transfer := &types.Transfer{
			UUID:        uuid.New(),
			Index:       i,
			Destination: destination,
			Amount:      d.config.Amount,
			Fee:         d.config.Fee,
		}

		result := d.submit(ctx, transfer)
		d.record(ctx, result)

		if result.Status == types.StatusFailed {
			failed++

			if d.config.HaltOnError {
				d.log.Error(
					"Aborting the run on the first failed transfer",
					"attempted", i+1,
					"remaining", total-i-1,
				)
				return errors.New(errors.CodeTransfer,
					fmt.Sprintf("transfer %d of %d to %s failed, %d destinations not attempted",
						i+1, total, destination, total-i-1), nil)
			}
		}

		d.sleep(ctx)
	}

	if failed > 0 {
		return errors.New(errors.CodeTransfer,
			fmt.Sprintf("%d of %d transfers failed", failed, total), nil)
	}

	d.log.Info("Disbursement finished", "destinations", total)

	return nil
}

func (d *Disburser) submit(ctx context.Context, transfer *types.Transfer) *types.TransferResult {
	result := &types.TransferResult{
		UUID:        transfer.UUID,
		Index:       transfer.Index,
		Destination: transfer.Destination,
		Amount:      transfer.Amount.String(),
		Fee:         transfer.Fee.String(),
		WalletHash:  d.config.WalletHash,
		SubmittedAt: time.Now().UTC(),
	}

	started := time.Now()
	txHash, err := d.submitter.SubmitTransfer(ctx, transfer)
	metrics.SubmitDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		result.Status = types.StatusFailed
		result.Error = err.Error()

		metrics.TransfersTotal.WithLabelValues(string(types.StatusFailed)).Inc()

		d.log.Error(
			"Cannot send jetton",
			"destination", transfer.Destination,
			"index", transfer.Index,
			"uuid", transfer.UUID,
			"error", err,
		)

		return result
	}

	result.Status = types.StatusSubmitted
	result.TxHash = txHash

	metrics.TransfersTotal.WithLabelValues(string(types.StatusSubmitted)).Inc()

	d.log.Info(
		"Jetton sent",
		"destination", transfer.Destination,
		"index", transfer.Index,
		"uuid", transfer.UUID,
		"tx_hash", txHash,
	)

	return result
}

// record forwards the result to the optional sinks. Sink failures are logged
// and never fail the transfer itself.
func (d *Disburser) record(ctx context.Context, result *types.TransferResult) {
	if d.ledger != nil {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, d.config.SinkTimeout)
		err := d.ledger.RecordTransfer(ctxWithTimeout, result)
		cancel()

		if err != nil {
			d.log.Error(
				"couldn't persist transfer result",
				"uuid", result.UUID,
				"error", err,
			)
		}
	}

	if d.notifier != nil {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, d.config.SinkTimeout)
		err := d.notifier.NotifyResult(ctxWithTimeout, result)
		cancel()

		if err != nil {
			d.log.Error(
				"couldn't publish transfer result",
				"uuid", result.UUID,
				"error", err,
			)
		}
	}
}

// sleep pauses between transfer attempts, including after the last one. The
// pause is cut short by cancellation, which then takes effect at the next
// loop boundary, never mid-transfer.
func (d *Disburser) sleep(ctx context.Context) {
	if d.config.Sleep <= 0 {
		return
	}

	timer := time.NewTimer(d.config.Sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
