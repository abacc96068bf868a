package runtime

import (
	"fmt"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/blockberries/fquorum/store"
)

// openAccountStore builds the AccountStore a Validator runs against. An
// empty DataDir keeps the reference core in-memory only (spec §6: "the
// reference core is in-memory only; durability is a composable
// concern"); a non-empty one opens a GoLevelDB-backed IAVL tree rooted
// there and wraps it with store.NewDurableAccountStore. The returned
// closer is nil for the in-memory case and must otherwise be closed by
// the caller on shutdown.
func openAccountStore(cfg *Config) (*store.AccountStore, closer, error) {
	if cfg.DataDir == "" {
		return store.NewAccountStore(), nil, nil
	}

	db, err := dbm.NewGoLevelDB("fquorum-state", cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("runtime: opening data dir %q: %w", cfg.DataDir, err)
	}

	cacheSize := cfg.IAVLCacheSize
	if cacheSize == 0 {
		cacheSize = store.DefaultIAVLCacheSize
	}

	backing, err := store.NewIAVLStore(db, cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("runtime: opening IAVL store: %w", err)
	}

	return store.NewDurableAccountStore(backing), backing, nil
}

// closer abstracts the backing store's shutdown path so Application
// doesn't need to know whether durability is enabled.
type closer interface {
	Flush() error
	Close() error
}
