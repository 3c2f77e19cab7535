package wallet

import (
	"context"
	"fmt"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"go.uber.org/zap"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/tlb"
	"github.com/xssnick/ton-collector/tvm/cell"
)

// Collector builds messages which move the whole wallet balance to another address.
// It is safe for concurrent use.
type Collector struct {
	code   *cell.Cell
	logger *zap.Logger
}

type Option func(*Collector)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

func NewCollector(code *cell.Cell, opts ...Option) *Collector {
	c := &Collector{
		code:   code,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MessageParams describes one collect message.
type MessageParams struct {
	Key      ed25519.PrivateKey
	To       *address.Address
	Init     bool // attach state init to deploy the wallet
	Destroy  bool // destroy the wallet when balance becomes zero
	Seqno    uint32
	WalletID uint32
	TTL      uint32 // seconds
}

func (c *Collector) ComputeAddress(pub ed25519.PublicKey, walletID uint32) (*address.Address, error) {
	return AddressFromPubKey(c.code, pub, walletID)
}

// CreateMessage returns signed external message for the wallet of params.Key.
func (c *Collector) CreateMessage(ctx context.Context, params MessageParams) (*tlb.ExternalMessage, error) {
	if params.Init && params.Seqno != 0 {
		return nil, fmt.Errorf("%w: seqno %d", ErrSeqnoWithInit, params.Seqno)
	}

	pub, err := PublicKey(params.Key)
	if err != nil {
		return nil, err
	}

	state, err := NewInitData(pub, params.WalletID).StateInit(c.code)
	if err != nil {
		return nil, fmt.Errorf("failed to get state init: %w", err)
	}

	addr, err := AddressFromStateInit(state)
	if err != nil {
		return nil, err
	}

	gifts := []Gift{collectGift(params.To, params.Destroy)}

	body, err := BuildTransferBody(ctx, SignerFromKey(params.Key), params.WalletID, params.Seqno, params.TTL, gifts)
	if err != nil {
		return nil, fmt.Errorf("build message err: %w", err)
	}

	msg := &tlb.ExternalMessage{
		DstAddr: addr,
		Body:    body,
	}
	if params.Init {
		msg.StateInit = state
	}

	c.logger.Debug("collect message built",
		zap.String("wallet", addr.String()),
		zap.String("to", params.To.String()),
		zap.Uint32("wallet_id", params.WalletID),
		zap.Uint32("seqno", params.Seqno),
		zap.Uint32("ttl", params.TTL),
		zap.Bool("state_init", params.Init),
		zap.Bool("destroy", params.Destroy),
	)

	return msg, nil
}
