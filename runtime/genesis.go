package runtime

import (
	"fmt"
	"math/big"
	"os"

	"github.com/blockberries/fquorum/crypto"
	"gopkg.in/yaml.v3"
)

// genesisDoc is the on-disk YAML shape for a genesis balance sheet:
// a flat map from hex address to a decimal balance string (decimal,
// not a YAML integer, so balances are not bounded by int64).
type genesisDoc struct {
	Balances map[string]string `yaml:"balances"`
}

// LoadGenesis reads a genesis document and returns the seeded balances
// keyed by crypto.Address, ready for engine.Config.GenesisBalances.
func LoadGenesis(path string) (map[crypto.Address]*big.Int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runtime: reading genesis: %w", err)
	}

	var doc genesisDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("runtime: parsing genesis: %w", err)
	}

	balances := make(map[crypto.Address]*big.Int, len(doc.Balances))
	for hexAddr, amount := range doc.Balances {
		var addr crypto.Address
		if err := addr.UnmarshalText([]byte(hexAddr)); err != nil {
			return nil, fmt.Errorf("runtime: genesis address %q: %w", hexAddr, err)
		}
		bal, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, fmt.Errorf("runtime: genesis balance %q for %s is not a valid decimal integer", amount, hexAddr)
		}
		if bal.Sign() < 0 {
			return nil, fmt.Errorf("runtime: genesis balance for %s is negative", hexAddr)
		}
		balances[addr] = bal
	}

	return balances, nil
}
