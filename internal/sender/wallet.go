package sender

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openbuilders/jetton-sender/internal/errors"
	"github.com/openbuilders/jetton-sender/internal/helpers"
	"github.com/openbuilders/jetton-sender/internal/types"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/jetton"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// Wallet is the funding wallet: it owns the signing capability derived from
// the mnemonic for the duration of the run and submits one jetton transfer
// per call. It is created once and shared by every transfer of the run.
type Wallet struct {
	client      ton.APIClientWrapped
	words       []string
	version     string
	testnet     bool
	queryID     QueryID
	mu          sync.Mutex
	wallet      *wallet.Wallet
	token       *jetton.Client
	tokenWallet *jetton.WalletClient
	log         *slog.Logger
}

func NewWallet(client ton.APIClientWrapped, words []string, version string,
	testnet bool) *Wallet {
	return &Wallet{
		client:  client,
		words:   words,
		version: version,
		testnet: testnet,
		log:     slog.With("component", "wallet"),
	}
}

// Hash is a short log-safe label of the wallet that doesn't leak the mnemonic.
func (w *Wallet) Hash() string {
	return helpers.TinyHash(strings.Join(w.words, " "))
}

// Init derives the wallet from the seed words and resolves the funding
// wallet's jetton wallet for the given jetton master contract. The jetton
// wallet address is constant for the run, so it is resolved once here.
func (w *Wallet) Init(ctx context.Context, jettonMaster string) error {
	versionConfig, err := ResolveVersion(w.version, w.testnet, w.buildHighloadMessage)
	if err != nil {
		return errors.New(errors.CodeConfig, err.Error(), err)
	}

	newWallet, err := wallet.FromSeed(w.client, w.words, versionConfig)
	if err != nil {
		return errors.New(errors.CodeLoad,
			"couldn't create wallet from seed", err)
	}

	w.wallet = newWallet

	master, err := address.ParseAddr(jettonMaster)
	if err != nil {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("invalid jetton address %q", jettonMaster), err)
	}

	w.token = jetton.NewJettonMasterClient(w.client, master)

	tokenWallet, err := w.token.GetJettonWallet(ctx, newWallet.WalletAddress())
	if err != nil {
		return errors.New(errors.CodePreflight,
			"couldn't resolve the funding wallet's jetton wallet", err)
	}

	w.tokenWallet = tokenWallet

	w.log.Info(
		"Funding wallet initialized",
		"wallet", w.Hash(),
		"address", w.GetAddress(),
		"jetton_wallet", tokenWallet.Address(),
		"version", w.version,
	)

	return nil
}

func (w *Wallet) GetAddress() *address.Address {
	if w.wallet == nil {
		return nil
	}

	return w.wallet.WalletAddress().Testnet(w.testnet)
}

// LogBalance fetches and logs the current TON balance of the funding wallet.
// The balance has to cover the attached fee of every transfer.
func (w *Wallet) LogBalance(ctx context.Context) error {
	block, err := w.client.CurrentMasterchainInfo(ctx)
	if err != nil {
		return fmt.Errorf("couldn't fetch master chain info: %w", err)
	}

	balance, err := w.wallet.GetBalance(ctx, block)
	if err != nil {
		return fmt.Errorf("GetBalance error: %w", err)
	}

	w.log.Info("Funding wallet balance", "wallet", w.Hash(), "ton", balance.String())

	return nil
}

// SubmitTransfer issues a single jetton transfer: the configured jetton
// amount goes into the transfer payload, the fee is the TON attached to the
// message that carries it to the jetton wallet. It waits for the transaction
// to be accepted and returns its hash. Transient errors are retried inside
// the API client, not here.
func (w *Wallet) SubmitTransfer(ctx context.Context, t *types.Transfer) (string, error) {
	dst, err := address.ParseAddr(t.Destination)
	if err != nil {
		return "", fmt.Errorf("invalid destination address %q: %w", t.Destination, err)
	}

	body, err := w.tokenWallet.BuildTransferPayloadV2(
		dst,
		w.wallet.WalletAddress(),
		t.Amount,
		tlb.MustFromTON("0"),
		nil,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("couldn't build transfer payload: %w", err)
	}

	msg := wallet.SimpleMessage(w.tokenWallet.Address(), t.Fee, body)

	w.log.Debug(
		"sending transaction and waiting for confirmation...",
		"destination", t.Destination,
		"query_uuid", t.UUID,
	)

	tx, _, err := w.wallet.SendWaitTransaction(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("transfer error: %w", err)
	}

	return base64.StdEncoding.EncodeToString(tx.Hash), nil
}

// buildHighloadMessage hands out sequential query ids for the highloadv3
// wallet config. Creation time is shifted back to stay within the
// liteserver's emulation time.
func (w *Wallet) buildHighloadMessage(ctx context.Context, subWalletID uint32) (
	uint32, int64, error) {

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.queryID.HasNext() {
		return 0, 0, ErrQueryIDExhausted
	}

	next, err := w.queryID.Next()
	if err != nil {
		return 0, 0, err
	}

	w.queryID = next

	createdAt := time.Now().Unix() - 30

	return uint32(next.Value()), createdAt, nil
}
