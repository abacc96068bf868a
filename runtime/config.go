// Package runtime wires process-wide configuration and genesis into a
// running engine.Validator, and manages its start/stop lifecycle. This
// replaces the teacher's block-oriented Application/Context/Router
// trio (see DESIGN.md): this protocol has no blocks, no BeginBlock/
// EndBlock hooks, and no chain-module message routing, so those
// abstractions have nothing to attach to.
package runtime

import (
	"fmt"
	"os"

	"github.com/blockberries/fquorum/crypto"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration resolved at startup (spec
// §6 "Parameters").
type Config struct {
	// F is the Byzantine fault budget.
	F int `yaml:"f"`

	// Validators lists every configured validator's hex-encoded address,
	// in the fixed order that also determines n = len(Validators).
	Validators []string `yaml:"validators"`

	// RecoveryContract is the hex-encoded sentinel recipient address
	// that marks a transaction as a recovery transaction.
	RecoveryContract string `yaml:"recovery_contract"`

	// SelfAddress selects which entry of Validators this process signs
	// as. Must be present in Validators.
	SelfAddress string `yaml:"self_address"`

	// KeyStoreDir, when set, loads SelfAddress's signing key from an
	// on-disk FileKeyStore; KeyStorePassphraseEnv names the environment
	// variable holding its passphrase.
	KeyStoreDir           string `yaml:"keystore_dir"`
	KeyStorePassphraseEnv string `yaml:"keystore_passphrase_env"`

	// ListenAddr is the RPC façade's bind address (spec §6 "the
	// canonical one is request/response JSON over HTTP at a single
	// endpoint").
	ListenAddr string `yaml:"listen_addr"`

	// GenesisPath points at a YAML document of address -> balance pairs
	// (see genesis.go).
	GenesisPath string `yaml:"genesis_path"`

	// DataDir selects durable storage when set: the account store
	// persists to an IAVL tree backed by GoLevelDB at this path (spec
	// §6: "durability is a composable concern"). Empty means the
	// reference in-memory-only AccountStore, which is the default.
	DataDir string `yaml:"data_dir"`

	// IAVLCacheSize bounds the IAVL tree's node cache when DataDir is
	// set. Zero uses store.DefaultIAVLCacheSize.
	IAVLCacheSize int `yaml:"iavl_cache_size"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runtime: reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("runtime: parsing config: %w", err)
	}
	return &cfg, nil
}

// N returns the configured validator count.
func (c *Config) N() int {
	return len(c.Validators)
}

// Validate enforces spec §6's startup invariant n >= 5f+1, along with
// the structural preconditions the rest of runtime relies on. Startup
// MUST fail (non-zero exit code, spec §6) when this returns an error.
func (c *Config) Validate() error {
	if c.F <= 0 {
		return fmt.Errorf("runtime: f must be a positive integer, got %d", c.F)
	}
	n := c.N()
	if n < 5*c.F+1 {
		return fmt.Errorf("runtime: n=%d does not satisfy n >= 5f+1 (f=%d requires n >= %d)", n, c.F, 5*c.F+1)
	}
	if c.RecoveryContract == "" {
		return fmt.Errorf("runtime: recovery_contract is required")
	}
	if c.SelfAddress == "" {
		return fmt.Errorf("runtime: self_address is required")
	}

	found := false
	for _, v := range c.Validators {
		if v == c.SelfAddress {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("runtime: self_address %q is not a member of validators", c.SelfAddress)
	}

	return nil
}

// NotarisationQuorum returns n - 3f.
func (c *Config) NotarisationQuorum() int {
	return c.N() - 3*c.F
}

// FinalityQuorum returns n - f.
func (c *Config) FinalityQuorum() int {
	return c.N() - c.F
}

// ParseValidators decodes every entry of Validators as a crypto.Address.
func (c *Config) ParseValidators() ([]crypto.Address, error) {
	addrs := make([]crypto.Address, len(c.Validators))
	for i, hexAddr := range c.Validators {
		var addr crypto.Address
		if err := addr.UnmarshalText([]byte(hexAddr)); err != nil {
			return nil, fmt.Errorf("runtime: validators[%d]: %w", i, err)
		}
		addrs[i] = addr
	}
	return addrs, nil
}
