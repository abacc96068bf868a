package capability

import (
	"context"
	"math/big"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
)

// ReadOnlyAccountCapability exposes only the query surface of the
// account store; granted to roles (e.g. get_recovery_info) that must
// never mutate account state.
type ReadOnlyAccountCapability interface {
	RoleName() string
	Get(ctx context.Context, addr crypto.Address) (*types.Account, error)
}

// AccountCapability additionally exposes genesis seeding and
// persistence, granted only to the certificate processor's own role.
type AccountCapability interface {
	ReadOnlyAccountCapability
	SeedGenesis(balances map[crypto.Address]*big.Int)
	Persist(ctx context.Context, addr crypto.Address) error
}

type accountCapability struct {
	role  string
	store *store.AccountStore
}

func (c *accountCapability) RoleName() string {
	return c.role
}

func (c *accountCapability) Get(ctx context.Context, addr crypto.Address) (*types.Account, error) {
	return c.store.Get(ctx, addr)
}

func (c *accountCapability) SeedGenesis(balances map[crypto.Address]*big.Int) {
	c.store.SeedGenesis(balances)
}

func (c *accountCapability) Persist(ctx context.Context, addr crypto.Address) error {
	return c.store.Persist(ctx, addr)
}
