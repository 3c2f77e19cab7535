package tlb

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/xssnick/ton-collector/tvm/cell"
)

// TonDecimals is the number of fractional digits of one TON.
const TonDecimals = 9

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrTooBigAmount  = errors.New("too big number for coins")
)

// Coins is a Grams value (VarUInteger 16) with the decimals used for rendering.
type Coins struct {
	decimals int
	val      *big.Int
}

var ZeroCoins = FromNanoTONU(0)

func (g Coins) String() string {
	if g.val == nil || g.val.Sign() == 0 {
		return "0"
	}

	a := g.val.String()

	splitter := len(a) - g.decimals
	if splitter <= 0 {
		a = "0." + strings.Repeat("0", g.decimals-len(a)) + a
	} else {
		a = a[:splitter] + "." + a[splitter:]
	}

	// cut trailing zeroes and the dot if nothing is left after it
	a = strings.TrimRight(a, "0")
	return strings.TrimSuffix(a, ".")
}

func (g Coins) Nano() *big.Int {
	if g.val == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(g.val)
}

func (g Coins) IsZero() bool {
	return g.val == nil || g.val.Sign() == 0
}

func MustFromTON(val string) Coins {
	v, err := FromTON(val)
	if err != nil {
		panic(err)
	}
	return v
}

func FromNanoTON(val *big.Int) (Coins, error) {
	if err := checkCoinsRange(val); err != nil {
		return Coins{}, err
	}

	return Coins{
		decimals: TonDecimals,
		val:      new(big.Int).Set(val),
	}, nil
}

func FromNanoTONU(val uint64) Coins {
	return Coins{
		decimals: TonDecimals,
		val:      new(big.Int).SetUint64(val),
	}
}

func FromTON(val string) (Coins, error) {
	return FromDecimal(val, TonDecimals)
}

// FromDecimal parses "int[.frac]", digits after the allowed decimals are dropped.
func FromDecimal(val string, decimals int) (Coins, error) {
	if decimals < 0 || decimals >= 128 {
		return Coins{}, fmt.Errorf("%w: invalid decimals %d", ErrInvalidAmount, decimals)
	}

	s := strings.SplitN(val, ".", 2)

	hi, ok := new(big.Int).SetString(s[0], 10)
	if !ok {
		return Coins{}, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
	}
	hi.Mul(hi, pow10(decimals))

	if len(s) == 2 {
		loStr := s[1]
		if len(loStr) > decimals {
			loStr = loStr[:decimals]
		}

		lo, ok := new(big.Int).SetString(loStr, 10)
		if !ok || strings.ContainsAny(loStr, "+-") {
			return Coins{}, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		lo.Mul(lo, pow10(decimals-len(loStr)))

		hi.Add(hi, lo)
	}

	if err := checkCoinsRange(hi); err != nil {
		return Coins{}, err
	}

	return Coins{
		decimals: decimals,
		val:      hi,
	}, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func checkCoinsRange(val *big.Int) error {
	if val.Sign() < 0 {
		return fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	if uint((val.BitLen()+7)>>3) >= 16 {
		return ErrTooBigAmount
	}
	return nil
}

func (g *Coins) LoadFromCell(loader *cell.Slice) error {
	coins, err := loader.LoadBigCoins()
	if err != nil {
		return err
	}
	g.decimals = TonDecimals
	g.val = coins
	return nil
}

func (g Coins) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell()
	if err := b.StoreBigCoins(g.Nano()); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}
