package wallet

import (
	"fmt"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/xssnick/ton-collector/tlb"
	"github.com/xssnick/ton-collector/tvm/cell"
)

// InitData is the persistent data of V3 wallet: seqno:32 wallet_id:32 public_key:256.
type InitData struct {
	Seqno     uint32
	WalletID  uint32
	PublicKey ed25519.PublicKey
}

// NewInitData returns data of a not yet deployed wallet, so seqno is 0.
func NewInitData(pub ed25519.PublicKey, walletID uint32) *InitData {
	return &InitData{
		WalletID:  walletID,
		PublicKey: pub,
	}
}

func (d *InitData) ToCell() (*cell.Cell, error) {
	if len(d.PublicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key size %d", ErrInvalidKey, len(d.PublicKey))
	}

	return cell.BeginCell().
		MustStoreUInt(uint64(d.Seqno), 32).
		MustStoreUInt(uint64(d.WalletID), 32).
		MustStoreSlice(d.PublicKey, 256).
		EndCell(), nil
}

func InitDataFromCell(c *cell.Cell) (*InitData, error) {
	s := c.BeginParse()

	seqno, err := s.LoadUInt(32)
	if err != nil {
		return nil, fmt.Errorf("failed to load seqno: %w", err)
	}

	walletID, err := s.LoadUInt(32)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet id: %w", err)
	}

	pub, err := s.LoadSlice(256)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	if s.BitsLeft() != 0 || s.RefsNum() != 0 {
		return nil, fmt.Errorf("%w: %d bits and %d refs left", ErrInvalidData, s.BitsLeft(), s.RefsNum())
	}

	return &InitData{
		Seqno:     uint32(seqno),
		WalletID:  uint32(walletID),
		PublicKey: pub,
	}, nil
}

// StateInit combines wallet code with this data.
func (d *InitData) StateInit(code *cell.Cell) (*tlb.StateInit, error) {
	data, err := d.ToCell()
	if err != nil {
		return nil, err
	}

	return &tlb.StateInit{
		Code: code,
		Data: data,
	}, nil
}
