package sender

import (
	"context"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/ton/wallet"
)

// HighloadMessageBuilder supplies the query id and creation time for each
// external message of a highload v3 wallet.
type HighloadMessageBuilder func(ctx context.Context, subWalletID uint32) (id uint32, createdAt int64, err error)

const highloadMessageTTL = 60 * 5

// ResolveVersion maps a source-wallet version tag to a tonutils wallet
// configuration. The builder is only used by the highloadv3 variant; other
// versions ignore it.
func ResolveVersion(tag string, testnet bool, builder HighloadMessageBuilder) (wallet.VersionConfig, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "v3r1":
		return wallet.V3R1, nil
	case "v3r2":
		return wallet.V3R2, nil
	case "v4r1":
		return wallet.V4R1, nil
	case "v4r2":
		return wallet.V4R2, nil
	case "v5r1":
		globalID := int32(wallet.MainnetGlobalID)
		if testnet {
			globalID = wallet.TestnetGlobalID
		}
		return wallet.ConfigV5R1Final{
			NetworkGlobalID: globalID,
		}, nil
	case "highloadv3":
		return wallet.ConfigHighloadV3{
			MessageTTL:     highloadMessageTTL,
			MessageBuilder: builder,
		}, nil
	}

	return nil, fmt.Errorf("unsupported source wallet version %q", tag)
}
