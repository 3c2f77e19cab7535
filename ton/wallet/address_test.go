package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAddressFromPubKey(t *testing.T) {
	pkey, _ := hex.DecodeString("dcc39550bb494f4b493e7efe1aa18ea31470f33a2553c568cb74a17ed56790c1")

	a, err := AddressFromPubKey(CodeV3(), pkey, DefaultSubwallet)
	if err != nil {
		t.Fatal(err)
	}

	if a.String() != "EQCvoBT5Keb46oUhI_DpX0WXFDdX9ZyxXBfX3FC9cZa90nQP" {
		t.Fatal("v3 not match", a.String())
	}

	if a.Workchain() != 0 || !a.IsBounceable() {
		t.Fatal("should be bounceable basechain address")
	}
}

func TestAddressFromPubKey_BadKey(t *testing.T) {
	_, err := AddressFromPubKey(CodeV3(), make([]byte, 31), 0)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestAddress_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pub := ed25519.PublicKey(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "pub"))
		id := rapid.Uint32().Draw(t, "id")

		c := NewCollector(CodeV3())

		a1, err := c.ComputeAddress(pub, id)
		if err != nil {
			t.Fatal(err)
		}
		a2, err := c.ComputeAddress(append(ed25519.PublicKey{}, pub...), id)
		if err != nil {
			t.Fatal(err)
		}

		if a1.String() != a2.String() {
			t.Fatalf("addresses diff: %s %s", a1, a2)
		}
	})
}

func TestAddress_NoCollisions(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	c := NewCollector(CodeV3())

	seen := make(map[string]uint32, 10000)
	for id := uint32(0); id < 10000; id++ {
		a, err := c.ComputeAddress(pub, id)
		require.NoError(t, err)

		raw := a.StringRaw()
		prev, exists := seen[raw]
		require.False(t, exists, "ids %d and %d give same address", prev, id)
		seen[raw] = id
	}
}
