package postgres

import (
	"context"
	"fmt"

	"github.com/openbuilders/jetton-sender/internal/types"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS disbursement (
	uuid UUID PRIMARY KEY,
	idx BIGINT NOT NULL,
	destination TEXT NOT NULL,
	amount TEXT NOT NULL,
	fee TEXT NOT NULL,
	status TEXT NOT NULL,
	wallet_hash TEXT NOT NULL,
	tx_hash TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	submitted_at TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the disbursement ledger table when it doesn't exist
// yet, so the tool is usable against a fresh database.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pg.Exec(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("couldn't ensure ledger schema: %w", err)
	}

	return nil
}

// RecordTransfer appends one transfer result to the ledger. Every attempt is
// recorded, failed ones included, so operators can reconcile partial runs.
func (p *Postgres) RecordTransfer(ctx context.Context, result *types.TransferResult) error {
	_, err := p.pg.Exec(ctx,
		`INSERT INTO disbursement
			(uuid, idx, destination, amount, fee, status, wallet_hash, tx_hash, error, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.UUID,
		result.Index,
		result.Destination,
		result.Amount,
		result.Fee,
		string(result.Status),
		result.WalletHash,
		result.TxHash,
		result.Error,
		result.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("couldn't persist transfer %s: %w", result.UUID, err)
	}

	return nil
}
