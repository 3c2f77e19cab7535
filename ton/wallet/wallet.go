package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/xssnick/ton-collector/tvm/cell"
)

// Send modes
const (
	CarryAllRemainingBalance       = 128
	CarryAllRemainingIncomingValue = 64
	DestroyAccountIfZero           = 32
	IgnoreErrors                   = 2
	PayGasSeparately               = 1
)

// defining it this way to mock for tests
var timeNow = time.Now

var (
	ErrTooManyGifts  = errors.New("too many gifts for one message")
	ErrSigningFailed = errors.New("signing failed")
	ErrInvalidKey    = errors.New("invalid key")
	ErrSeqnoWithInit = errors.New("state init can be attached only with zero seqno")
	ErrNoDestination = errors.New("gift destination is not set")
	ErrInvalidData   = errors.New("invalid wallet data")
)

// Signer returns ed25519 signature of the cell's representation hash.
type Signer func(context.Context, *cell.Cell) ([]byte, error)

// SignerFromKey signs locally with the private key.
func SignerFromKey(key ed25519.PrivateKey) Signer {
	return func(ctx context.Context, c *cell.Cell) ([]byte, error) {
		if c == nil {
			return nil, fmt.Errorf("cannot sign: cell is nil")
		}
		if len(key) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: private key size %d", ErrInvalidKey, len(key))
		}
		return c.Sign(key), nil
	}
}
