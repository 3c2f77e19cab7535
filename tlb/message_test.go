package tlb

import (
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tvm/cell"
)

func TestInternalMessage_ToCell(t *testing.T) {
	src := address.MustParseAddr("EQAOp1zuKuX4zY6L9rEdSLam7J3gogIHhfRu_gH70u2MQnmd")
	dst := address.MustParseAddr("EQA_B407fiLIlE5VYZCaI2rki0in6kLyjdhhwitvZNfpe7eY")
	amount := MustFromTON("0.05")

	intMsg := InternalMessage{
		IHRDisabled: false,
		Bounce:      true,
		Bounced:     false,
		SrcAddr:     src,
		DstAddr:     dst,
		Amount:      amount,
		StateInit: &StateInit{
			Data: cell.BeginCell().EndCell(),
			Code: cell.BeginCell().EndCell(),
		},
		Body: cell.BeginCell().MustStoreUInt(777, 32).EndCell(),
	}

	c, err := intMsg.ToCell()
	require.NoError(t, err)

	var intMsg2 InternalMessage
	require.NoError(t, intMsg2.LoadFromCell(c.BeginParse()))

	require.Equal(t, intMsg.SrcAddr.String(), intMsg2.SrcAddr.String())
	require.Equal(t, intMsg.DstAddr.String(), intMsg2.DstAddr.String())
	require.Equal(t, intMsg.Amount.Nano().Uint64(), intMsg2.Amount.Nano().Uint64())
	require.True(t, intMsg2.Bounce)
	require.NotNil(t, intMsg2.StateInit)
	require.Equal(t, intMsg.Body.Hash(), intMsg2.Body.Hash())

	c2, err := intMsg2.ToCell()
	require.NoError(t, err)
	require.Equal(t, c.Hash(), c2.Hash())
}

func TestInternalMessage_Layout(t *testing.T) {
	dst := address.MustParseAddr("EQA_B407fiLIlE5VYZCaI2rki0in6kLyjdhhwitvZNfpe7eY")

	msg := InternalMessage{
		IHRDisabled: true,
		Bounce:      false,
		DstAddr:     dst,
		Amount:      ZeroCoins,
	}

	c, err := msg.ToCell()
	require.NoError(t, err)

	want := cell.BeginCell().
		MustStoreUInt(0b0100, 4). // tag, ihr disabled, bounce, bounced
		MustStoreUInt(0, 2).      // src addr_none
		MustStoreAddr(dst).
		MustStoreUInt(0, 4). // zero grams
		MustStoreUInt(0, 1). // no extra currencies
		MustStoreUInt(0, 4).
		MustStoreUInt(0, 4).
		MustStoreUInt(0, 64).
		MustStoreUInt(0, 32).
		MustStoreUInt(0, 1). // no init
		MustStoreUInt(0, 1). // inline empty body
		EndCell()

	require.Equal(t, want.Dump(), c.Dump())
	require.Equal(t, want.Hash(), c.Hash())
}

func TestCornerMessage(t *testing.T) {
	msgBoc, _ := hex.DecodeString("b5ee9c724101020100860001b36800bf4c6bdca25797e55d700c1a5448e2af5d1ac16f9a9628719a4e1eb2b44d85e33fd104a366f6fb17799871f82e00e4f2eb8ae6aaf6d3e0b3fb346cd0208e23725e14094ba15d20071f12260000446ee17a9b0cc8c028d8c001004d8002b374733831aac3455708e8f1d2c7f129540b982d3a5de8325bf781083a8a3d2a04a7f943813277f3ea")

	c, err := cell.FromBOC(msgBoc)
	require.NoError(t, err)

	var m InternalMessage
	require.NoError(t, m.LoadFromCell(c.BeginParse()))

	c2, err := m.ToCell()
	require.NoError(t, err)
	require.Equal(t, c.Hash(), c2.Hash())
}

func TestExternalMessage_ToCell(t *testing.T) {
	dst := address.MustParseAddr("EQAOp1zuKuX4zY6L9rEdSLam7J3gogIHhfRu_gH70u2MQnmd")
	code := cell.BeginCell().MustStoreUInt(0xC0DE, 16).EndCell()
	data := cell.BeginCell().MustStoreUInt(0xDA7A, 16).EndCell()

	t.Run("small body inline", func(t *testing.T) {
		body := cell.BeginCell().MustStoreUInt(0xAB, 8).EndCell()
		msg := &ExternalMessage{DstAddr: dst, Body: body}

		c, err := msg.ToCell()
		require.NoError(t, err)
		require.EqualValues(t, 0, c.RefsNum())
		// tag, src, dst, import fee, no init, inline body
		require.EqualValues(t, 2+2+267+4+1+1+8, c.BitsSize())

		var loaded ExternalMessage
		require.NoError(t, loaded.LoadFromCell(c.BeginParse()))
		require.Nil(t, loaded.StateInit)
		require.True(t, loaded.SrcAddr.IsAddrNone())
		require.True(t, loaded.DstAddr.Equals(dst))
		require.Equal(t, body.Hash(), loaded.Body.Hash())
	})

	t.Run("big body as ref", func(t *testing.T) {
		body := cell.BeginCell().
			MustStoreSlice(make([]byte, 100), 800).
			MustStoreRef(code).
			EndCell()
		msg := &ExternalMessage{
			DstAddr:   dst,
			StateInit: &StateInit{Code: code, Data: data},
			Body:      body,
		}

		c, err := msg.ToCell()
		require.NoError(t, err)

		s := c.BeginParse()
		s.MustLoadUInt(2)
		require.True(t, s.MustLoadAddr().IsAddrNone())
		require.True(t, s.MustLoadAddr().Equals(dst))
		require.Zero(t, s.MustLoadCoins())
		require.True(t, s.MustLoadBoolBit(), "init present")
		require.False(t, s.MustLoadBoolBit(), "init inline")
		require.EqualValues(t, 0b00110, s.MustLoadUInt(5))
		require.True(t, s.MustLoadBoolBit(), "body does not fit, stored as ref")
		require.EqualValues(t, 0, s.BitsLeft())
		require.Equal(t, 3, s.RefsNum())

		var loaded ExternalMessage
		require.NoError(t, loaded.LoadFromCell(c.BeginParse()))

		wantInit, _ := msg.StateInit.ToCell()
		gotInit, err := loaded.StateInit.ToCell()
		require.NoError(t, err)
		require.Equal(t, wantInit.Hash(), gotInit.Hash())
		require.Equal(t, body.Hash(), loaded.Body.Hash())
	})

	t.Run("wrong tag", func(t *testing.T) {
		c, err := (&InternalMessage{DstAddr: dst}).ToCell()
		require.NoError(t, err)

		var loaded ExternalMessage
		require.ErrorIs(t, loaded.LoadFromCell(c.BeginParse()), ErrUnexpectedMessageType)
	})
}

func TestExternalMessage_RoundTripStruct(t *testing.T) {
	dst := address.MustParseRawAddr("0:ba295e33b3c4c9b5265aa4ead1166a92931ce9abea120a8c5e91044a1257f89c")
	msg := &ExternalMessage{
		DstAddr: dst,
		Body:    cell.BeginCell().MustStoreUInt(42, 32).EndCell(),
	}

	c, err := msg.ToCell()
	require.NoError(t, err)

	var loaded ExternalMessage
	require.NoError(t, loaded.LoadFromCell(c.BeginParse()))

	summary := func(m *ExternalMessage) map[string]string {
		return map[string]string{
			"src":  m.SrcAddr.StringRaw(),
			"dst":  m.DstAddr.StringRaw(),
			"fee":  m.ImportFee.String(),
			"body": hex.EncodeToString(m.Body.Hash()),
		}
	}

	msg.SrcAddr = address.NewAddressNone()
	if diff := cmp.Diff(summary(msg), summary(&loaded)); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}
