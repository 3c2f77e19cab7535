package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tlb"
	"github.com/xssnick/ton-collector/tvm/cell"
)

const testSeed = "0b4e8ba9b43ae7a45d0cfb6d6b1d5f7dd8d7e4b3a3f5c1a3e1f2a4c6b8d0e2f4"

var testDst = address.MustParseAddr("EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I")

func fixTime(t *testing.T, unix int64) {
	old := timeNow
	timeNow = func() time.Time {
		return time.Unix(unix, 0)
	}
	t.Cleanup(func() {
		timeNow = old
	})
}

func testKey(t *testing.T) ed25519.PrivateKey {
	key, err := ParsePrivateKey(testSeed)
	require.NoError(t, err)
	return key
}

func TestInitData_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := &InitData{
			Seqno:     rapid.Uint32().Draw(t, "seqno"),
			WalletID:  rapid.Uint32().Draw(t, "id"),
			PublicKey: rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "pub"),
		}

		c, err := d.ToCell()
		if err != nil {
			t.Fatal(err)
		}

		if c.BitsSize() != 320 || c.RefsNum() != 0 {
			t.Fatalf("unexpected cell size %d bits %d refs", c.BitsSize(), c.RefsNum())
		}

		got, err := InitDataFromCell(c)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(d, got); diff != "" {
			t.Fatalf("init data mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestInitDataFromCell_Invalid(t *testing.T) {
	pub := make([]byte, 32)

	trailing := cell.BeginCell().MustStoreUInt(0, 64).MustStoreSlice(pub, 256).MustStoreUInt(1, 1).EndCell()
	_, err := InitDataFromCell(trailing)
	require.ErrorIs(t, err, ErrInvalidData)

	withRef := cell.BeginCell().MustStoreUInt(0, 64).MustStoreSlice(pub, 256).MustStoreRef(cell.BeginCell().EndCell()).EndCell()
	_, err = InitDataFromCell(withRef)
	require.ErrorIs(t, err, ErrInvalidData)

	short := cell.BeginCell().MustStoreUInt(0, 64).EndCell()
	_, err = InitDataFromCell(short)
	require.ErrorIs(t, err, cell.ErrNotEnoughData)
}

func TestNewInitData(t *testing.T) {
	pub := make([]byte, 32)
	pub[0] = 0xAA

	d := NewInitData(pub, 7)
	require.Zero(t, d.Seqno)
	require.EqualValues(t, 7, d.WalletID)

	state, err := d.StateInit(CodeV3())
	require.NoError(t, err)
	require.Equal(t, CodeV3().Hash(), state.Code.Hash())

	want := cell.BeginCell().MustStoreUInt(0, 32).MustStoreUInt(7, 32).MustStoreSlice(pub, 256).EndCell()
	require.Equal(t, want.Hash(), state.Data.Hash())
}

func TestGift_Encode(t *testing.T) {
	mode, msg, err := Gift{Mode: 3, Bounce: true, Destination: testDst, Amount: tlb.MustFromTON("1.5")}.Encode()
	require.NoError(t, err)
	require.EqualValues(t, 3, mode)

	var intMsg tlb.InternalMessage
	require.NoError(t, intMsg.LoadFromCell(msg.BeginParse()))
	require.True(t, intMsg.IHRDisabled)
	require.True(t, intMsg.Bounce)
	require.False(t, intMsg.Bounced)
	require.True(t, intMsg.SrcAddr.IsAddrNone())
	require.True(t, intMsg.DstAddr.Equals(testDst))
	require.Equal(t, "1.5", intMsg.Amount.String())
	require.Nil(t, intMsg.StateInit)
	require.EqualValues(t, 0, intMsg.Body.BitsSize())

	_, _, err = Gift{}.Encode()
	require.ErrorIs(t, err, ErrNoDestination)
}

func TestCollectGift_Flags(t *testing.T) {
	require.EqualValues(t, 128, collectGift(testDst, false).Mode)
	require.EqualValues(t, 160, collectGift(testDst, true).Mode)
	require.False(t, collectGift(testDst, true).Bounce)
	require.True(t, collectGift(testDst, true).Amount.IsZero())
}

func TestBuildTransferBody_GiftsLimit(t *testing.T) {
	key := testKey(t)

	for n := 0; n <= 6; n++ {
		gifts := make([]Gift, n)
		for i := range gifts {
			gifts[i] = collectGift(testDst, false)
		}

		body, err := BuildTransferBody(context.Background(), SignerFromKey(key), 0, 0, 60, gifts)
		if n >= MaxGiftsCount {
			require.ErrorIs(t, err, ErrTooManyGifts, "gifts %d", n)
			continue
		}

		require.NoError(t, err, "gifts %d", n)
		require.EqualValues(t, 512+96+8*n, body.BitsSize())
		require.EqualValues(t, n, body.RefsNum())
	}
}

func TestBuildTransferBody_Signature(t *testing.T) {
	fixTime(t, 1700000000)
	key := testKey(t)
	pub, err := PublicKey(key)
	require.NoError(t, err)

	gifts := []Gift{collectGift(testDst, false), collectGift(testDst, true)}

	body, err := BuildTransferBody(context.Background(), SignerFromKey(key), 42, 5, 60, gifts)
	require.NoError(t, err)

	s := body.BeginParse()
	sign := s.MustLoadSlice(512)

	unsigned := s.MustToCell()
	require.True(t, ed25519.Verify(pub, unsigned.Hash(), sign), "signature must be over the rest of the body")

	require.EqualValues(t, 42, s.MustLoadUInt(32))
	require.EqualValues(t, 1700000060, s.MustLoadUInt(32))
	require.EqualValues(t, 5, s.MustLoadUInt(32))
	require.EqualValues(t, 128, s.MustLoadUInt(8))
	first := s.MustLoadRefCell()
	require.EqualValues(t, 160, s.MustLoadUInt(8))
	s.MustLoadRefCell()
	require.EqualValues(t, 0, s.BitsLeft())

	_, wantFirst, err := gifts[0].Encode()
	require.NoError(t, err)
	require.Equal(t, wantFirst.Hash(), first.Hash())

	// ed25519 is deterministic, same inputs give the same body
	again, err := BuildTransferBody(context.Background(), SignerFromKey(key), 42, 5, 60, gifts)
	require.NoError(t, err)
	require.Equal(t, body.Hash(), again.Hash())
}

func TestBuildTransferBody_SigningFailed(t *testing.T) {
	gifts := []Gift{collectGift(testDst, false)}

	failing := func(ctx context.Context, c *cell.Cell) ([]byte, error) {
		return nil, errors.New("device disconnected")
	}
	_, err := BuildTransferBody(context.Background(), failing, 0, 0, 60, gifts)
	require.ErrorIs(t, err, ErrSigningFailed)
	require.Contains(t, err.Error(), "device disconnected")

	short := func(ctx context.Context, c *cell.Cell) ([]byte, error) {
		return make([]byte, 10), nil
	}
	_, err = BuildTransferBody(context.Background(), short, 0, 0, 60, gifts)
	require.ErrorIs(t, err, ErrSigningFailed)

	_, err = BuildTransferBody(context.Background(), SignerFromKey(make([]byte, 5)), 0, 0, 60, gifts)
	require.ErrorIs(t, err, ErrSigningFailed)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestBuildTransferBody_ValidUntilOverflow(t *testing.T) {
	fixTime(t, 1700000000)

	_, err := BuildTransferBody(context.Background(), SignerFromKey(testKey(t)), 0, 0, 0xFFFFFFFF, nil)
	require.ErrorIs(t, err, cell.ErrTooBigValue)
}

func TestParsePrivateKey(t *testing.T) {
	key := testKey(t)
	require.Len(t, key, ed25519.PrivateKeySize)

	full, err := ParsePrivateKey(hex.EncodeToString(key))
	require.NoError(t, err)
	require.Equal(t, key, full)

	withPrefix, err := ParsePrivateKey("0x" + testSeed + "\n")
	require.NoError(t, err)
	require.Equal(t, key, withPrefix)

	broken := append(ed25519.PrivateKey{}, key...)
	broken[63] ^= 1

	for _, bad := range []string{"zz", "abcd", hex.EncodeToString(broken), ""} {
		_, err = ParsePrivateKey(bad)
		require.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestCollector_CreateMessage_Transfer(t *testing.T) {
	fixTime(t, 1700000000)
	key := testKey(t)
	pub, _ := PublicKey(key)

	c := NewCollector(CodeV3())

	msg, err := c.CreateMessage(context.Background(), MessageParams{
		Key:      key,
		To:       testDst,
		Seqno:    3,
		WalletID: DefaultSubwallet,
		TTL:      60,
	})
	require.NoError(t, err)
	require.Nil(t, msg.StateInit)

	walletAddr, err := c.ComputeAddress(pub, DefaultSubwallet)
	require.NoError(t, err)
	require.True(t, msg.DstAddr.Equals(walletAddr))

	ext, err := msg.ToCell()
	require.NoError(t, err)
	require.EqualValues(t, 1, ext.RefsNum(), "only the internal message ref")

	parsed, err := cell.FromBOC(ext.ToBOCWithFlags(true))
	require.NoError(t, err)

	var loaded tlb.ExternalMessage
	require.NoError(t, loaded.LoadFromCell(parsed.BeginParse()))
	require.Nil(t, loaded.StateInit)

	s := loaded.Body.BeginParse()
	sign := s.MustLoadSlice(512)
	require.True(t, ed25519.Verify(pub, s.MustToCell().Hash(), sign))

	require.EqualValues(t, DefaultSubwallet, s.MustLoadUInt(32))
	require.EqualValues(t, 1700000060, s.MustLoadUInt(32))
	require.EqualValues(t, 3, s.MustLoadUInt(32))
	require.EqualValues(t, 128, s.MustLoadUInt(8))

	var intMsg tlb.InternalMessage
	require.NoError(t, intMsg.LoadFromCell(s.MustLoadRef()))
	require.False(t, intMsg.Bounce)
	require.True(t, intMsg.Amount.IsZero())
	require.True(t, intMsg.DstAddr.Equals(testDst))
}

func TestCollector_CreateMessage_Deploy(t *testing.T) {
	key := testKey(t)

	c := NewCollector(CodeV3())

	msg, err := c.CreateMessage(context.Background(), MessageParams{
		Key:      key,
		To:       testDst,
		Init:     true,
		Destroy:  true,
		WalletID: 1,
		TTL:      60,
	})
	require.NoError(t, err)
	require.NotNil(t, msg.StateInit)

	stateCell, err := msg.StateInit.ToCell()
	require.NoError(t, err)
	require.Equal(t, stateCell.Hash(), msg.DstAddr.Data())

	pub, err := PublicKey(key)
	require.NoError(t, err)
	walletAddr, err := c.ComputeAddress(pub, 1)
	require.NoError(t, err)
	require.True(t, msg.DstAddr.Equals(walletAddr))

	ext, err := msg.ToCell()
	require.NoError(t, err)

	var loaded tlb.ExternalMessage
	require.NoError(t, loaded.LoadFromCell(ext.BeginParse()))
	require.NotNil(t, loaded.StateInit)

	data, err := InitDataFromCell(loaded.StateInit.Data)
	require.NoError(t, err)
	require.EqualValues(t, 1, data.WalletID)
	require.Zero(t, data.Seqno)
	require.Equal(t, CodeV3().Hash(), loaded.StateInit.Code.Hash())

	s := loaded.Body.BeginParse()
	s.MustLoadSlice(512 + 96)
	require.EqualValues(t, 160, s.MustLoadUInt(8))
}

func TestCollector_CreateMessage_Errors(t *testing.T) {
	key := testKey(t)
	c := NewCollector(CodeV3())

	_, err := c.CreateMessage(context.Background(), MessageParams{Key: key, To: testDst, Init: true, Seqno: 1})
	require.ErrorIs(t, err, ErrSeqnoWithInit)

	_, err = c.CreateMessage(context.Background(), MessageParams{Key: key[:10], To: testDst})
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = c.CreateMessage(context.Background(), MessageParams{Key: key})
	require.ErrorIs(t, err, ErrNoDestination)
}

func TestCodeV3(t *testing.T) {
	require.Equal(t, "84dafa449f98a6987789ba232358072bc0f76dc4524002a5d0918b9a75d2d599", hex.EncodeToString(CodeV3().Hash()))
}
