package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/openbuilders/jetton-sender/internal/errors"
)

var requiredArgs = []string{
	"-api-key", "key",
	"-jetton-address", "EQjetton",
	"-jetton-send-amount", "100",
	"-jetton-send-fee", "0.04",
}

// clearEnv blanks every environment variable Load falls back to, so an
// operator's shell doesn't leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"TON_CENTER_API_KEY", "JETTON_ADDRESS", "JETTON_SEND_AMOUNT",
		"JETTON_DECIMALS", "JETTON_SEND_FEE", "JETTON_SEND_SLEEP",
		"SOURCE_WALLET_VERSION", "MNEMONIC_FILE", "WALLETS_FILE",
		"HALT_ON_ERROR", "IS_TESTNET", "LIGHTCLIENT_CONFIG", "TONCENTER_URL",
		"METRICS_PORT", "POSTGRES_URL", "RABBIT_URL", "LOG_LEVEL",
	} {
		// t.Setenv registers restoration of the original value; the
		// variable itself has to be unset, not blank, for defaults to apply.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(requiredArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Sleep != 60*time.Second {
		t.Errorf("default sleep is %v, want 60s", cfg.Sleep)
	}

	if cfg.WalletVersion != "v4r2" {
		t.Errorf("default wallet version is %q, want v4r2", cfg.WalletVersion)
	}

	if cfg.MnemonicFile != ".mnemonics" {
		t.Errorf("default mnemonic file is %q, want .mnemonics", cfg.MnemonicFile)
	}

	if cfg.WalletsFile != ".wallets" {
		t.Errorf("default wallets file is %q, want .wallets", cfg.WalletsFile)
	}

	if cfg.HaltOnError {
		t.Error("halt-on-error should default to false")
	}

	if cfg.LightClientConfig != MainnetConfigURL {
		t.Errorf("default lite client config is %q", cfg.LightClientConfig)
	}

	if cfg.TonCenterURL != MainnetTonCenterURL {
		t.Errorf("default TON Center URL is %q", cfg.TonCenterURL)
	}
}

func TestLoad_TestnetEndpoints(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(append([]string{"-testnet"}, requiredArgs...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LightClientConfig != TestnetConfigURL {
		t.Errorf("testnet lite client config is %q", cfg.LightClientConfig)
	}

	if cfg.TonCenterURL != TestnetTonCenterURL {
		t.Errorf("testnet TON Center URL is %q", cfg.TonCenterURL)
	}
}

func TestLoad_AmountAndFeeParsing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(requiredArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Amount.Nano().String() != "100000000000" {
		t.Errorf("amount 100 with 9 decimals parsed to %s nano", cfg.Amount.Nano())
	}

	if cfg.Fee.Nano().String() != "40000000" {
		t.Errorf("fee 0.04 TON parsed to %s nano", cfg.Fee.Nano())
	}
}

func TestLoad_EnvFallback(t *testing.T) {
	clearEnv(t)

	t.Setenv("TON_CENTER_API_KEY", "env-key")
	t.Setenv("JETTON_SEND_SLEEP", "5")

	cfg, err := Load([]string{
		"-jetton-address", "EQjetton",
		"-jetton-send-amount", "1",
		"-jetton-send-fee", "0.01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIKey != "env-key" {
		t.Errorf("API key is %q, want the environment fallback", cfg.APIKey)
	}

	if cfg.Sleep != 5*time.Second {
		t.Errorf("sleep is %v, want the environment value 5s", cfg.Sleep)
	}
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("TON_CENTER_API_KEY", "env-key")

	cfg, err := Load(requiredArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIKey != "key" {
		t.Errorf("API key is %q, the explicit flag must win over the environment", cfg.APIKey)
	}
}

func TestLoad_RequiredOptions(t *testing.T) {
	clearEnv(t)

	cases := []struct {
		name string
		drop string
	}{
		{"api key", "-api-key"},
		{"jetton address", "-jetton-address"},
		{"amount", "-jetton-send-amount"},
		{"fee", "-jetton-send-fee"},
	}

	for _, tc := range cases {
		var args []string
		for i := 0; i < len(requiredArgs); i += 2 {
			if requiredArgs[i] == tc.drop {
				continue
			}
			args = append(args, requiredArgs[i], requiredArgs[i+1])
		}

		_, err := Load(args)
		if err == nil {
			t.Errorf("%s: expected an error when missing", tc.name)
			continue
		}

		if errors.CodeOf(err) != errors.CodeConfig {
			t.Errorf("%s: expected a config error, got %v", tc.name, errors.CodeOf(err))
		}
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	cases := [][]string{
		append([]string{"-jetton-send-sleep", "-1"}, requiredArgs...),
		{"-api-key", "key", "-jetton-address", "EQjetton",
			"-jetton-send-amount", "abc", "-jetton-send-fee", "0.04"},
		{"-api-key", "key", "-jetton-address", "EQjetton",
			"-jetton-send-amount", "0", "-jetton-send-fee", "0.04"},
		{"-api-key", "key", "-jetton-address", "EQjetton",
			"-jetton-send-amount", "100", "-jetton-send-fee", "0"},
		append([]string{"-jetton-decimals", "-2"}, requiredArgs...),
	}

	for _, args := range cases {
		if _, err := Load(args); err == nil {
			t.Errorf("expected an error for args %s", strings.Join(args, " "))
		}
	}
}
