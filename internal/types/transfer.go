package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/xssnick/tonutils-go/tlb"
)

type TransferStatus string

const (
	StatusSubmitted TransferStatus = "submitted"
	StatusFailed    TransferStatus = "failed"
)

// Transfer is one instructed unit of work: send a fixed jetton amount to a
// single destination, attaching a fixed TON fee. Amount and fee are constant
// across a run; only the destination and index vary.
type Transfer struct {
	UUID        uuid.UUID
	Index       int
	Destination string
	Amount      tlb.Coins
	Fee         tlb.Coins
}

// TransferResult records the outcome of a single submission attempt. It is
// what gets logged, persisted to the ledger, and published to the notifier
// queue.
type TransferResult struct {
	UUID        uuid.UUID      `json:"uuid" db:"uuid"`
	Index       int            `json:"index" db:"idx"`
	Destination string         `json:"destination" db:"destination"`
	Amount      string         `json:"amount" db:"amount"`
	Fee         string         `json:"fee" db:"fee"`
	Status      TransferStatus `json:"status" db:"status"`
	WalletHash  string         `json:"wallet_hash" db:"wallet_hash"`
	TxHash      string         `json:"tx_hash,omitempty" db:"tx_hash"`
	Error       string         `json:"error,omitempty" db:"error"`
	SubmittedAt time.Time      `json:"submitted_at" db:"submitted_at"`
}
