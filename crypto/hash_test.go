package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDomainHashSeparatesDomains(t *testing.T) {
	part := []byte("same payload")
	h1 := DomainHash("vote", part)
	h2 := DomainHash("transaction", part)
	require.NotEqual(t, h1, h2)
}

func TestDomainHashDeterministic(t *testing.T) {
	h1 := DomainHash("vote", []byte("a"), []byte("b"))
	h2 := DomainHash("vote", []byte("a"), []byte("b"))
	require.Equal(t, h1, h2)
}

func TestZeroHashIsZero(t *testing.T) {
	require.True(t, ZeroHash.IsZero())
	require.False(t, SumHash([]byte("x")).IsZero())
}

func TestHashTextRoundTrip(t *testing.T) {
	h := SumHash([]byte("recovery tip"))
	text, err := h.MarshalText()
	require.NoError(t, err)

	var decoded Hash
	require.NoError(t, decoded.UnmarshalText(text))
	require.Equal(t, h, decoded)
}
