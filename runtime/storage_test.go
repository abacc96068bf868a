package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/fquorum/crypto"
)

func TestOpenAccountStoreInMemory(t *testing.T) {
	cfg := &Config{}
	accounts, backing, err := openAccountStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, accounts)
	require.Nil(t, backing)
}

func TestOpenAccountStoreDurable(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir()}
	accounts, backing, err := openAccountStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, accounts)
	require.NotNil(t, backing)
	defer func() {
		require.NoError(t, backing.Flush())
		require.NoError(t, backing.Close())
	}()

	addr := crypto.Address{0x01}
	a, err := accounts.Get(context.Background(), addr)
	require.NoError(t, err)
	require.NotNil(t, a)
}
