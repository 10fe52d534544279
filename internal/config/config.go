package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/openbuilders/jetton-sender/internal/env"
	"github.com/openbuilders/jetton-sender/internal/errors"

	"github.com/xssnick/tonutils-go/tlb"
)

const (
	MainnetConfigURL = "https://ton.org/global.config.json"
	TestnetConfigURL = "https://ton.org/testnet-global.config.json"

	MainnetTonCenterURL = "https://toncenter.com/api/v2"
	TestnetTonCenterURL = "https://testnet.toncenter.com/api/v2"
)

// Config holds every knob of a disbursement run. It is built once by Load and
// never mutated afterwards.
type Config struct {
	APIKey            string
	JettonAddress     string
	Amount            tlb.Coins
	Decimals          int
	Fee               tlb.Coins
	Sleep             time.Duration
	WalletVersion     string
	MnemonicFile      string
	WalletsFile       string
	HaltOnError       bool
	Testnet           bool
	LightClientConfig string
	TonCenterURL      string
	MetricsPort       int
	PostgresURL       string
	RabbitURL         string
	LogLevel          string
}

// Load builds the configuration from the given command-line arguments.
// Precedence is: explicit flag > environment variable > default; the env
// fallback is implemented by seeding every flag's default from the
// environment. Validation failures are config errors and abort the run
// before anything else happens.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("jetton-sender", flag.ContinueOnError)

	apiKey := fs.String("api-key",
		env.GetString("TON_CENTER_API_KEY", ""),
		"TON Center API key (falls back to TON_CENTER_API_KEY)")
	jettonAddress := fs.String("jetton-address",
		env.GetString("JETTON_ADDRESS", ""),
		"address of the jetton master contract")
	amount := fs.String("jetton-send-amount",
		env.GetString("JETTON_SEND_AMOUNT", ""),
		"jetton amount to send to every destination")
	decimals := fs.Int("jetton-decimals",
		env.GetInt("JETTON_DECIMALS", 9),
		"decimal precision of the jetton")
	fee := fs.String("jetton-send-fee",
		env.GetString("JETTON_SEND_FEE", ""),
		"TON attached to every transfer to cover fees")
	sleep := fs.Int("jetton-send-sleep",
		env.GetInt("JETTON_SEND_SLEEP", 60),
		"seconds to sleep between transfers")
	walletVersion := fs.String("source-wallet-version",
		env.GetString("SOURCE_WALLET_VERSION", "v4r2"),
		"contract version of the funding wallet")
	mnemonicFile := fs.String("source-wallet-mnemonic-file",
		env.GetString("MNEMONIC_FILE", ".mnemonics"),
		"file with 24 mnemonic words, one per line")
	walletsFile := fs.String("destination-wallets-file",
		env.GetString("WALLETS_FILE", ".wallets"),
		"file with destination addresses, one per line, order is the send order")
	haltOnError := fs.Bool("halt-on-error",
		env.GetBool("HALT_ON_ERROR", false),
		"abort the whole run on the first failed transfer instead of continuing")
	testnet := fs.Bool("testnet",
		env.GetBool("IS_TESTNET", false),
		"use testnet endpoints")
	lightClientConfig := fs.String("lightclient-config",
		env.GetString("LIGHTCLIENT_CONFIG", ""),
		"lite server config URL (defaults to the ton.org config of the chosen network)")
	tonCenterURL := fs.String("toncenter-url",
		env.GetString("TONCENTER_URL", ""),
		"TON Center API base URL (defaults to the public endpoint of the chosen network)")
	metricsPort := fs.Int("metrics-port",
		env.GetInt("METRICS_PORT", 0),
		"port for the Prometheus /metrics listener, 0 disables it")
	postgresURL := fs.String("postgres-url",
		env.GetString("POSTGRES_URL", ""),
		"Postgres DSN for the disbursement ledger, empty disables it")
	rabbitURL := fs.String("rabbit-url",
		env.GetString("RABBIT_URL", ""),
		"RabbitMQ URL for result notifications, empty disables them")
	logLevel := fs.String("log-level",
		env.GetString("LOG_LEVEL", "INFO"),
		"log level")

	if err := fs.Parse(args); err != nil {
		return nil, errors.New(errors.CodeConfig, err.Error(), err)
	}

	config := &Config{
		APIKey:            *apiKey,
		JettonAddress:     *jettonAddress,
		Decimals:          *decimals,
		WalletVersion:     *walletVersion,
		MnemonicFile:      *mnemonicFile,
		WalletsFile:       *walletsFile,
		HaltOnError:       *haltOnError,
		Testnet:           *testnet,
		LightClientConfig: *lightClientConfig,
		TonCenterURL:      *tonCenterURL,
		MetricsPort:       *metricsPort,
		PostgresURL:       *postgresURL,
		RabbitURL:         *rabbitURL,
		LogLevel:          *logLevel,
	}

	if config.APIKey == "" {
		return nil, configError("an API key is required, pass -api-key or set TON_CENTER_API_KEY")
	}

	if config.JettonAddress == "" {
		return nil, configError("-jetton-address is required")
	}

	if *amount == "" {
		return nil, configError("-jetton-send-amount is required")
	}

	if config.Decimals < 0 || config.Decimals > 255 {
		return nil, configError("-jetton-decimals must be in [0, 255]")
	}

	amountCoins, err := tlb.FromDecimal(*amount, config.Decimals)
	if err != nil {
		return nil, configError(fmt.Sprintf("invalid -jetton-send-amount %q: %v", *amount, err))
	}
	if amountCoins.Nano().Sign() <= 0 {
		return nil, configError("-jetton-send-amount must be positive")
	}
	config.Amount = amountCoins

	if *fee == "" {
		return nil, configError("-jetton-send-fee is required")
	}

	feeCoins, err := tlb.FromTON(*fee)
	if err != nil {
		return nil, configError(fmt.Sprintf("invalid -jetton-send-fee %q: %v", *fee, err))
	}
	if feeCoins.Nano().Sign() <= 0 {
		return nil, configError("-jetton-send-fee must be positive")
	}
	config.Fee = feeCoins

	if *sleep < 0 {
		return nil, configError("-jetton-send-sleep must be >= 0")
	}
	config.Sleep = time.Duration(*sleep) * time.Second

	if config.LightClientConfig == "" {
		config.LightClientConfig = MainnetConfigURL
		if config.Testnet {
			config.LightClientConfig = TestnetConfigURL
		}
	}

	if config.TonCenterURL == "" {
		config.TonCenterURL = MainnetTonCenterURL
		if config.Testnet {
			config.TonCenterURL = TestnetTonCenterURL
		}
	}

	return config, nil
}

func configError(message string) error {
	return errors.New(errors.CodeConfig, message, nil)
}
