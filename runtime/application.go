package runtime

import (
	"fmt"
	"math/big"
	"os"

	"cosmossdk.io/log"

	"github.com/blockberries/fquorum/certproc"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/engine"
)

// Application is the top-level process: a configured engine.Validator
// plus the structured logger every other component writes through.
// Unlike the teacher's block-oriented Application, there is no
// BeginBlock/EndBlock cycle or registered-module list to coordinate —
// the certificate processor runs synchronously inside each ingress
// call (spec §5), so Application's job is purely construction and
// lifecycle, not per-block scheduling.
type Application struct {
	logger    log.Logger
	config    *Config
	Validator *engine.Validator

	// backing is the durable store opened by openAccountStore, nil
	// when the validator is in-memory only. Stop flushes and closes it.
	backing closer
}

// NewApplication builds an Application from a loaded, validated Config
// and an already-resolved signer: it parses the validator set and the
// recovery contract address, loads genesis balances, opens the account
// store and constructs the engine.Validator. Callers MUST call
// Config.Validate before this (spec §6: startup fails non-zero on
// configuration failure).
func NewApplication(cfg *Config, signer crypto.Signer, broadcaster certproc.Broadcaster, logger log.Logger) (*Application, error) {
	if logger == nil {
		logger = log.NewLogger(os.Stderr)
	}

	validators, err := cfg.ParseValidators()
	if err != nil {
		return nil, err
	}

	var recoveryContract crypto.Address
	if err := recoveryContract.UnmarshalText([]byte(cfg.RecoveryContract)); err != nil {
		return nil, fmt.Errorf("runtime: recovery_contract: %w", err)
	}

	genesis, err := loadGenesisIfSet(cfg)
	if err != nil {
		return nil, err
	}

	accounts, backing, err := openAccountStore(cfg)
	if err != nil {
		return nil, err
	}

	if backing != nil {
		logger.Info("starting validator", "n", cfg.N(), "f", cfg.F, "self", signer.Address().String(), "data_dir", cfg.DataDir)
	} else {
		logger.Info("starting validator", "n", cfg.N(), "f", cfg.F, "self", signer.Address().String())
	}

	v, err := engine.NewValidator(engine.Config{
		N:                cfg.N(),
		F:                cfg.F,
		RecoveryContract: recoveryContract,
		Validators:       validators,
		Signer:           signer,
		Broadcaster:      broadcaster,
		GenesisBalances:  genesis,
		Accounts:         accounts,
	})
	if err != nil {
		return nil, fmt.Errorf("runtime: constructing validator: %w", err)
	}

	return &Application{logger: logger, config: cfg, Validator: v, backing: backing}, nil
}

func loadGenesisIfSet(cfg *Config) (map[crypto.Address]*big.Int, error) {
	if cfg.GenesisPath == "" {
		return nil, nil
	}
	return LoadGenesis(cfg.GenesisPath)
}

// Logger returns the application's structured logger.
func (a *Application) Logger() log.Logger {
	return a.logger
}
