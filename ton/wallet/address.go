package wallet

import (
	"fmt"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tlb"
	"github.com/xssnick/ton-collector/tvm/cell"
)

// AddressFromStateInit returns bounceable basechain address of the contract.
func AddressFromStateInit(state *tlb.StateInit) (*address.Address, error) {
	addr, err := state.CalcAddress(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get state cell: %w", err)
	}
	return addr, nil
}

// AddressFromPubKey derives address of V3 wallet with the given code.
func AddressFromPubKey(code *cell.Cell, key ed25519.PublicKey, walletID uint32) (*address.Address, error) {
	state, err := NewInitData(key, walletID).StateInit(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return AddressFromStateInit(state)
}
