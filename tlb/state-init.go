package tlb

import (
	"fmt"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tvm/cell"
)

type TickTock struct {
	Tick bool
	Tock bool
}

// StateInit is split_depth:(Maybe (## 5)) special:(Maybe TickTock) code:(Maybe ^Cell) data:(Maybe ^Cell) library:(HashmapE 256 SimpleLib).
// Library dictionary is kept as its root cell.
type StateInit struct {
	Depth    *uint64
	TickTock *TickTock
	Code     *cell.Cell
	Data     *cell.Cell
	Lib      *cell.Cell
}

func (s *StateInit) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell()

	if err := b.StoreBoolBit(s.Depth != nil); err != nil {
		return nil, err
	}
	if s.Depth != nil {
		if err := b.StoreUInt(*s.Depth, 5); err != nil {
			return nil, fmt.Errorf("failed to store split depth: %w", err)
		}
	}

	b.MustStoreBoolBit(s.TickTock != nil)
	if s.TickTock != nil {
		b.MustStoreBoolBit(s.TickTock.Tick).MustStoreBoolBit(s.TickTock.Tock)
	}

	for _, ref := range []*cell.Cell{s.Code, s.Data, s.Lib} {
		if err := b.StoreMaybeRef(ref); err != nil {
			return nil, err
		}
	}

	return b.EndCell(), nil
}

func (s *StateInit) LoadFromCell(loader *cell.Slice) error {
	var st StateInit

	has, err := loader.LoadBoolBit()
	if err != nil {
		return err
	}
	if has {
		depth, err := loader.LoadUInt(5)
		if err != nil {
			return fmt.Errorf("failed to load split depth: %w", err)
		}
		st.Depth = &depth
	}

	if has, err = loader.LoadBoolBit(); err != nil {
		return err
	}
	if has {
		var tt TickTock
		if tt.Tick, err = loader.LoadBoolBit(); err != nil {
			return err
		}
		if tt.Tock, err = loader.LoadBoolBit(); err != nil {
			return err
		}
		st.TickTock = &tt
	}

	if st.Code, err = loader.LoadMaybeRefCell(); err != nil {
		return fmt.Errorf("failed to load code: %w", err)
	}
	if st.Data, err = loader.LoadMaybeRefCell(); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	if st.Lib, err = loader.LoadMaybeRefCell(); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	*s = st
	return nil
}

// CalcAddress returns bounceable std address of a contract deployed with this state.
func (s *StateInit) CalcAddress(workchain int) (*address.Address, error) {
	c, err := s.ToCell()
	if err != nil {
		return nil, err
	}
	return address.NewAddress(0, byte(workchain), c.Hash()), nil
}
