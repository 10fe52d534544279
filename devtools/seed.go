package main

import (
	"context"
	"log"
	"strings"

	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// Generates a fresh funding-wallet seed and prints its addresses. Write the
// words into the mnemonic file (one per line) and top the wallet up before
// running the sender.
func main() {
	ctx := context.Background()

	client := liteclient.NewConnectionPool()
	cfg, err := liteclient.GetConfigFromUrl(ctx, "https://ton.org/testnet-global.config.json")
	if err != nil {
		log.Fatalln("get config err: ", err.Error())
		return
	}

	err = client.AddConnectionsFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalln("connection err: ", err.Error())
		return
	}

	api := ton.NewAPIClient(client, ton.ProofCheckPolicyFast).WithRetry()
	api.SetTrustedBlockFromConfig(cfg)

	seed := wallet.NewSeed()
	log.Println("New seed:", strings.Join(seed, " "))

	w, err := wallet.FromSeed(api, seed, wallet.V4R2)
	if err != nil {
		log.Fatalln("FromSeed err:", err.Error())
		return
	}

	log.Println("wallet address:", w.WalletAddress())
	log.Println("testnet wallet address:", w.WalletAddress().Testnet(true))
}
