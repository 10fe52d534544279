package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openbuilders/jetton-sender/internal/config"
	"github.com/openbuilders/jetton-sender/internal/disburser"
	"github.com/openbuilders/jetton-sender/internal/env"
	"github.com/openbuilders/jetton-sender/internal/errors"
	"github.com/openbuilders/jetton-sender/internal/log"
	"github.com/openbuilders/jetton-sender/internal/metrics"
	"github.com/openbuilders/jetton-sender/internal/notifier"
	"github.com/openbuilders/jetton-sender/internal/queue"
	"github.com/openbuilders/jetton-sender/internal/repository/postgres"
	"github.com/openbuilders/jetton-sender/internal/sender"
	"github.com/openbuilders/jetton-sender/internal/toncenter"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
	"golang.org/x/sync/errgroup"
)

// Exit codes: 1 config error or failed transfers, 2 input load error,
// 3 pre-flight/client error, 4 funding wallet not active.
const (
	exitOK = iota
	exitConfig
	exitLoad
	exitPreflight
	exitWalletNotActive
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("configuration error", "error", err)
		return exitConfig
	}

	log.Setup(cfg.LogLevel)

	words, err := sender.LoadMnemonic(cfg.MnemonicFile)
	if err != nil {
		slog.Error("couldn't load the wallet mnemonic", "error", err)
		return exitLoad
	}

	destinations, err := sender.LoadDestinations(cfg.WalletsFile)
	if err != nil {
		slog.Error("couldn't load destination wallets", "error", err)
		return exitLoad
	}

	slog.Info("Loaded destination wallets", "count", len(destinations))

	// create the context and register signals that could cause its
	// cancellation and graceful shutdown
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	tonCenter := toncenter.New(&toncenter.Config{
		BaseURL:       cfg.TonCenterURL,
		APIKey:        cfg.APIKey,
		RetryAttempts: env.GetInt("RETRIEVE_RETRY_ATTEMPTS", 5),
		RetryWait:     time.Duration(env.GetInt("RETRIEVE_RETRY_WAIT", 5)) * time.Second,
	})

	token, err := tonCenter.GetTokenData(ctx, cfg.JettonAddress)
	if err != nil {
		slog.Error("couldn't get jetton data", "error", err)
		return exitPreflight
	}

	slog.Info(
		"Jetton",
		"address", cfg.JettonAddress,
		"total_supply", token.TotalSupply,
		"mintable", token.Mintable,
	)

	slog.Info("Connecting to lite servers...")

	client := liteclient.NewConnectionPool()

	err = client.AddConnectionsFromConfigUrl(ctx, cfg.LightClientConfig)
	if err != nil {
		slog.Error("couldn't add connection to lite client", "error", err)
		return exitPreflight
	}

	api := ton.NewAPIClient(client, ton.ProofCheckPolicyFast).WithRetry()

	wallet := sender.NewWallet(api, words, cfg.WalletVersion, cfg.Testnet)

	err = wallet.Init(ctx, cfg.JettonAddress)
	if err != nil {
		slog.Error("couldn't initialize the funding wallet", "error", err)
		if errors.CodeOf(err) == errors.CodeConfig {
			return exitConfig
		}
		return exitPreflight
	}

	state, err := tonCenter.GetAddressState(ctx, wallet.GetAddress().String())
	if err != nil {
		slog.Error("couldn't get the funding wallet state", "error", err)
		return exitPreflight
	}

	if state != toncenter.StateActive {
		slog.Error(
			"Source wallet is not active, cannot use it to send jettons",
			"address", wallet.GetAddress(),
			"state", state,
		)
		return exitWalletNotActive
	}

	if err := wallet.LogBalance(ctx); err != nil {
		slog.Warn("couldn't fetch the funding wallet balance", "error", err)
	}

	var ledger disburser.Ledger
	if cfg.PostgresURL != "" {
		slog.Info("Connecting to Postgres...")

		pg, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			slog.Error("connect to Postgres", "error", err)
			return exitPreflight
		}
		defer pg.Close()

		pgClient := postgres.New(pg, 5*time.Second)

		if err := pgClient.Ping(ctx); err != nil {
			slog.Error("check Postgres connection", "error", err)
			return exitPreflight
		}

		if err := pgClient.EnsureSchema(ctx); err != nil {
			slog.Error("prepare the ledger schema", "error", err)
			return exitPreflight
		}

		ledger = pgClient
	}

	var results disburser.Notifier
	if cfg.RabbitURL != "" {
		slog.Info("Connecting to RabbitMQ...")

		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			slog.Error("connect to RabbitMQ", "error", err)
			return exitPreflight
		}
		defer rabbitConn.Close()

		if err := queue.EnsureQueueExists(rabbitConn, queue.QueueDisbursement); err != nil {
			slog.Error("declare the disbursement queue", "error", err)
			return exitPreflight
		}

		results = notifier.New(queue.NewPublisher(rabbitConn, queue.QueueDisbursement))
	}

	runner := disburser.New(&disburser.Config{
		Amount:      cfg.Amount,
		Fee:         cfg.Fee,
		Sleep:       cfg.Sleep,
		HaltOnError: cfg.HaltOnError,
		WalletHash:  wallet.Hash(),
		SinkTimeout: 3 * time.Second,
	}, wallet, destinations, ledger, results)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errGroup, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsPort > 0 {
		errGroup.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsPort)
		})
	}

	var runErr error

	errGroup.Go(func() error {
		// stop the metrics listener once the run is over
		defer cancel()

		runErr = runner.Run(ctx)
		return nil
	})

	if err := errGroup.Wait(); err != nil {
		slog.Error("jetton sender exited with an error", "error", err)
		return exitConfig
	}

	if runErr != nil {
		slog.Error("disbursement incomplete", "error", runErr)
		return exitConfig
	}

	return exitOK
}
