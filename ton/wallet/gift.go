package wallet

import (
	"fmt"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tlb"
	"github.com/xssnick/ton-collector/tvm/cell"
)

// Gift is one outgoing transfer of the wallet.
type Gift struct {
	Mode        uint8
	Bounce      bool
	Destination *address.Address
	Amount      tlb.Coins
}

// Encode returns send mode and internal message cell of the gift.
func (g Gift) Encode() (uint8, *cell.Cell, error) {
	if g.Destination == nil || g.Destination.IsAddrNone() {
		return 0, nil, ErrNoDestination
	}

	msg := &tlb.InternalMessage{
		IHRDisabled: true,
		Bounce:      g.Bounce,
		DstAddr:     g.Destination,
		Amount:      g.Amount,
	}

	c, err := msg.ToCell()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to convert internal message to cell: %w", err)
	}

	return g.Mode, c, nil
}

// collectGift sends the whole balance to the destination, and destroys the wallet when asked.
func collectGift(to *address.Address, destroy bool) Gift {
	mode := uint8(CarryAllRemainingBalance)
	if destroy {
		mode |= DestroyAccountIfZero
	}

	return Gift{
		Mode:        mode,
		Bounce:      false,
		Destination: to,
		Amount:      tlb.ZeroCoins,
	}
}
