package wallet

import (
	"encoding/hex"

	"github.com/xssnick/ton-collector/tvm/cell"
)

// https://github.com/toncenter/tonweb/blob/master/src/contract/wallet/WalletSources.md#revision-2-2
const _V3R2CodeHex = "B5EE9C724101010100710000DEFF0020DD2082014C97BA218201339CBAB19F71B0ED44D0D31FD31F31D70BFFE304E0A4F2608308D71820D31FD31FD31FF82313BBF263ED44D0D31FD31FD3FFD15132BAF2A15144BAF2A204F901541055F910F2A3F8009320D74A96D307D402FB00E8D101A4C8CB1FCB1FCBFFC9ED5410BD6DAD"

// DefaultSubwallet is the wallet id used by most V3 wallets.
const DefaultSubwallet = 698983191

var v3Code *cell.Cell

func init() {
	boc, err := hex.DecodeString(_V3R2CodeHex)
	if err != nil {
		panic(err)
	}

	v3Code, err = cell.FromBOC(boc)
	if err != nil {
		panic(err)
	}
}

// CodeV3 returns wallet V3R2 contract code.
func CodeV3() *cell.Cell {
	return v3Code
}
