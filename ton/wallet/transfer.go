package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/xssnick/ton-collector/tvm/cell"
)

// MaxGiftsCount bounds gifts of one message, only counts below it are accepted.
const MaxGiftsCount = 4

// BuildTransferBody assembles and signs V3 wallet message body:
// signature:512 wallet_id:32 valid_until:32 seqno:32 (mode:8 ^msg)*.
func BuildTransferBody(ctx context.Context, signer Signer, walletID, seqno, ttl uint32, gifts []Gift) (*cell.Cell, error) {
	if len(gifts) >= MaxGiftsCount {
		return nil, fmt.Errorf("%w: %d, must be less than %d", ErrTooManyGifts, len(gifts), MaxGiftsCount)
	}

	validUntil := timeNow().Add(time.Duration(ttl) * time.Second).UTC().Unix()

	payload := cell.BeginCell().MustStoreUInt(uint64(walletID), 32)
	if err := payload.StoreUInt(uint64(validUntil), 32); err != nil {
		return nil, fmt.Errorf("failed to store valid until %d: %w", validUntil, err)
	}
	payload.MustStoreUInt(uint64(seqno), 32)

	for i, gift := range gifts {
		mode, intMsg, err := gift.Encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode gift %d: %w", i, err)
		}

		payload.MustStoreUInt(uint64(mode), 8).MustStoreRef(intMsg)
	}

	sign, err := signer(ctx, payload.EndCell())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	if len(sign) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature size %d", ErrSigningFailed, len(sign))
	}

	if err = payload.PrependSlice(sign, 512); err != nil {
		return nil, fmt.Errorf("failed to store signature: %w", err)
	}

	return payload.EndCell(), nil
}
