package tlb

import (
	"errors"
	"fmt"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tvm/cell"
)

var ErrUnexpectedMessageType = errors.New("unexpected message type")

// InternalMessage is int_msg_info$0 followed by init and body.
// Extra currencies dictionary is kept as its root cell.
type InternalMessage struct {
	IHRDisabled     bool
	Bounce          bool
	Bounced         bool
	SrcAddr         *address.Address
	DstAddr         *address.Address
	Amount          Coins
	ExtraCurrencies *cell.Cell
	IHRFee          Coins
	FwdFee          Coins
	CreatedLT       uint64
	CreatedAt       uint32

	StateInit *StateInit
	Body      *cell.Cell
}

// ExternalMessage is ext_in_msg_info$10 followed by init and body.
type ExternalMessage struct {
	SrcAddr   *address.Address
	DstAddr   *address.Address
	ImportFee Coins

	StateInit *StateInit
	Body      *cell.Cell
}

func appendInitStateAndBody(b *cell.Builder, stateInit *StateInit, body *cell.Cell) error {
	var err error
	if b.BitsLeft() < 2 {
		return fmt.Errorf("not enough storage to serialize state init and body")
	}

	b.MustStoreBoolBit(stateInit != nil)
	if stateInit != nil {
		stateCell, err := stateInit.ToCell()
		if err != nil {
			return fmt.Errorf("failed to serialize state init: %w", err)
		}

		// one bit of either here and one bit of body either after
		if int(stateCell.BitsSize()) > int(b.BitsLeft())-2 || int(stateCell.RefsNum()) > int(b.RefsLeft())-1 {
			b.MustStoreBoolBit(true) // state as ref
			err = b.StoreRef(stateCell)
		} else {
			b.MustStoreBoolBit(false) // state as slice
			err = b.StoreBuilder(stateCell.ToBuilder())
		}
		if err != nil {
			return fmt.Errorf("failed to store message state init: %w", err)
		}
	}

	if b.BitsLeft() < 1 {
		return fmt.Errorf("not enough storage to serialize body")
	}

	if body != nil {
		if int(body.BitsSize()) > int(b.BitsLeft())-1 || body.RefsNum() > b.RefsLeft() {
			b.MustStoreBoolBit(true) // body as ref
			err = b.StoreRef(body)
		} else {
			b.MustStoreBoolBit(false) // body as slice
			err = b.StoreBuilder(body.ToBuilder())
		}
		if err != nil {
			return fmt.Errorf("failed to store message body: %w", err)
		}
	} else {
		b.MustStoreBoolBit(false)
	}

	return nil
}

func loadInitStateAndBody(loader *cell.Slice) (*StateInit, *cell.Cell, error) {
	var stateInit *StateInit

	hasInit, err := loader.LoadBoolBit()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load state init flag: %w", err)
	}

	if hasInit {
		isRef, err := loader.LoadBoolBit()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load state init either: %w", err)
		}

		from := loader
		if isRef {
			if from, err = loader.LoadRef(); err != nil {
				return nil, nil, fmt.Errorf("failed to load state init ref: %w", err)
			}
		}

		stateInit = &StateInit{}
		if err = stateInit.LoadFromCell(from); err != nil {
			return nil, nil, fmt.Errorf("failed to parse state init: %w", err)
		}
	}

	isRef, err := loader.LoadBoolBit()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load body either: %w", err)
	}

	var body *cell.Cell
	if isRef {
		body, err = loader.LoadRefCell()
	} else {
		body, err = loader.ToCell()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load body: %w", err)
	}

	return stateInit, body, nil
}

func (m *InternalMessage) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell()
	b.MustStoreUInt(0, 1) // identification of int msg
	b.MustStoreBoolBit(m.IHRDisabled)
	b.MustStoreBoolBit(m.Bounce)
	b.MustStoreBoolBit(m.Bounced)

	if err := b.StoreAddr(m.SrcAddr); err != nil {
		return nil, fmt.Errorf("failed to store source address: %w", err)
	}
	if err := b.StoreAddr(m.DstAddr); err != nil {
		return nil, fmt.Errorf("failed to store destination address: %w", err)
	}
	if err := b.StoreBigCoins(m.Amount.Nano()); err != nil {
		return nil, fmt.Errorf("failed to store amount: %w", err)
	}

	b.MustStoreMaybeRef(m.ExtraCurrencies)

	b.MustStoreBigCoins(m.IHRFee.Nano())
	b.MustStoreBigCoins(m.FwdFee.Nano())

	b.MustStoreUInt(m.CreatedLT, 64)
	b.MustStoreUInt(uint64(m.CreatedAt), 32)

	err := appendInitStateAndBody(b, m.StateInit, m.Body)
	if err != nil {
		return nil, err
	}

	return b.EndCell(), nil
}

func (m *InternalMessage) LoadFromCell(loader *cell.Slice) error {
	tag, err := loader.LoadUInt(1)
	if err != nil {
		return err
	}
	if tag != 0 {
		return fmt.Errorf("%w: not an internal message", ErrUnexpectedMessageType)
	}

	var msg InternalMessage
	for _, flag := range []*bool{&msg.IHRDisabled, &msg.Bounce, &msg.Bounced} {
		if *flag, err = loader.LoadBoolBit(); err != nil {
			return err
		}
	}

	if msg.SrcAddr, err = loader.LoadAddr(); err != nil {
		return fmt.Errorf("failed to load source address: %w", err)
	}
	if msg.DstAddr, err = loader.LoadAddr(); err != nil {
		return fmt.Errorf("failed to load destination address: %w", err)
	}
	if err = msg.Amount.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load amount: %w", err)
	}
	if msg.ExtraCurrencies, err = loader.LoadMaybeRefCell(); err != nil {
		return fmt.Errorf("failed to load extra currencies: %w", err)
	}
	if err = msg.IHRFee.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load ihr fee: %w", err)
	}
	if err = msg.FwdFee.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load fwd fee: %w", err)
	}
	if msg.CreatedLT, err = loader.LoadUInt(64); err != nil {
		return err
	}
	createdAt, err := loader.LoadUInt(32)
	if err != nil {
		return err
	}
	msg.CreatedAt = uint32(createdAt)

	if msg.StateInit, msg.Body, err = loadInitStateAndBody(loader); err != nil {
		return err
	}

	*m = msg
	return nil
}

func (m *InternalMessage) Dump() string {
	body := "EMPTY"
	if m.Body != nil {
		body = m.Body.Dump()
	}
	return fmt.Sprintf("Amount %s TON, Created at: %d, Created lt %d\nBounce: %t, Bounced %t, IHRDisabled %t\nSrcAddr: %s\nDstAddr: %s\nPayload: %s",
		m.Amount.String(), m.CreatedAt, m.CreatedLT, m.Bounce, m.Bounced, m.IHRDisabled, m.SrcAddr, m.DstAddr, body)
}

func (m *ExternalMessage) ToCell() (*cell.Cell, error) {
	builder := cell.BeginCell().MustStoreUInt(0b10, 2)

	if err := builder.StoreAddr(m.SrcAddr); err != nil {
		return nil, fmt.Errorf("failed to store source address: %w", err)
	}
	if err := builder.StoreAddr(m.DstAddr); err != nil {
		return nil, fmt.Errorf("failed to store destination address: %w", err)
	}
	if err := builder.StoreBigCoins(m.ImportFee.Nano()); err != nil {
		return nil, fmt.Errorf("failed to store import fee: %w", err)
	}

	err := appendInitStateAndBody(builder, m.StateInit, m.Body)
	if err != nil {
		return nil, err
	}

	return builder.EndCell(), nil
}

func (m *ExternalMessage) LoadFromCell(loader *cell.Slice) error {
	tag, err := loader.LoadUInt(2)
	if err != nil {
		return err
	}
	if tag != 0b10 {
		return fmt.Errorf("%w: not an external in message", ErrUnexpectedMessageType)
	}

	var msg ExternalMessage
	if msg.SrcAddr, err = loader.LoadAddr(); err != nil {
		return fmt.Errorf("failed to load source address: %w", err)
	}
	if msg.DstAddr, err = loader.LoadAddr(); err != nil {
		return fmt.Errorf("failed to load destination address: %w", err)
	}
	if err = msg.ImportFee.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load import fee: %w", err)
	}

	if msg.StateInit, msg.Body, err = loadInitStateAndBody(loader); err != nil {
		return err
	}

	*m = msg
	return nil
}
