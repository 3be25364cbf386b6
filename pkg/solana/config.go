package solana

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/netutil"
)

type Environment string

const (
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
)

// ResolveEndpoint accepts either a cluster name or a URL and returns the
// RPC endpoint to dial.
func ResolveEndpoint(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "devnet":
		return string(EnvironmentDev), nil
	case "testnet":
		return string(EnvironmentTest), nil
	case "mainnet", "mainnet-beta":
		return string(EnvironmentProd), nil
	case "localnet":
		return string(EnvironmentLocal), nil
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if err := netutil.ValidateHttpUrl(s, false); err != nil {
			return "", errors.Wrapf(err, "invalid endpoint %q", s)
		}
		return s, nil
	}
	return "", errors.Errorf("unknown cluster or endpoint %q", s)
}
