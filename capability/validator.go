package capability

import (
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/store"
)

// ValidatorSetCapability exposes read-only membership queries over the
// static, configured validator set (spec §4.8b, §6). This is adapted
// from the teacher's staking/delegation ValidatorCapability: this
// protocol has no staking, delegation, or commission — membership is
// fixed at startup — so only the membership-check surface survives.
type ValidatorSetCapability interface {
	RoleName() string
	Contains(addr crypto.Address) bool
	Size() int
	All() []crypto.Address
}

type validatorSetCapability struct {
	role string
	set  *store.ValidatorSetStore
}

func (c *validatorSetCapability) RoleName() string {
	return c.role
}

func (c *validatorSetCapability) Contains(addr crypto.Address) bool {
	return c.set.Contains(addr)
}

func (c *validatorSetCapability) Size() int {
	return c.set.Size()
}

func (c *validatorSetCapability) All() []crypto.Address {
	return c.set.All()
}
