package cell

import (
	"fmt"
	"math/big"

	"github.com/xssnick/ton-collector/address"
)

// Slice is a read cursor over cell bits and references.
type Slice struct {
	bitsSz   uint
	loadedSz uint
	data     []byte

	// store it as slice of pointers to make indexing logic cleaner on parse,
	// from outside it should always come as object to not have problems
	refs []*Cell
}

func (c *Slice) MustLoadRef() *Slice {
	r, err := c.LoadRef()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadRef() (*Slice, error) {
	ref, err := c.LoadRefCell()
	if err != nil {
		return nil, err
	}
	return ref.BeginParse(), nil
}

func (c *Slice) MustLoadRefCell() *Cell {
	r, err := c.LoadRefCell()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadRefCell() (*Cell, error) {
	if len(c.refs) == 0 {
		return nil, ErrNoMoreRefs
	}
	ref := c.refs[0]
	c.refs = c.refs[1:]

	return ref, nil
}

func (c *Slice) MustLoadMaybeRef() *Slice {
	r, err := c.LoadMaybeRef()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadMaybeRef() (*Slice, error) {
	ref, err := c.LoadMaybeRefCell()
	if err != nil {
		return nil, err
	}

	if ref == nil {
		return nil, nil
	}
	return ref.BeginParse(), nil
}

func (c *Slice) LoadMaybeRefCell() (*Cell, error) {
	has, err := c.LoadBoolBit()
	if err != nil {
		return nil, err
	}

	if !has {
		return nil, nil
	}

	return c.LoadRefCell()
}

func (c *Slice) RefsNum() int {
	return len(c.refs)
}

func (c *Slice) MustLoadCoins() uint64 {
	r, err := c.LoadCoins()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadCoins() (uint64, error) {
	value, err := c.LoadBigCoins()
	if err != nil {
		return 0, err
	}

	if !value.IsUint64() {
		return 0, ErrTooBigValue
	}
	return value.Uint64(), nil
}

func (c *Slice) MustLoadBigCoins() *big.Int {
	r, err := c.LoadBigCoins()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadBigCoins() (*big.Int, error) {
	// varInt 16 https://github.com/ton-blockchain/ton/blob/24dc184a2ea67f9c47042b4104bbb4d82289fac1/crypto/block/block-parse.cpp#L319
	return c.LoadVarUInt(16)
}

func (c *Slice) LoadVarUInt(sz uint) (*big.Int, error) {
	ln, err := c.LoadUInt(uint(big.NewInt(int64(sz - 1)).BitLen()))
	if err != nil {
		return nil, err
	}

	return c.LoadBigUInt(uint(ln * 8))
}

func (c *Slice) MustLoadUInt(sz uint) uint64 {
	res, err := c.LoadUInt(sz)
	if err != nil {
		panic(err)
	}
	return res
}

func (c *Slice) LoadUInt(sz uint) (uint64, error) {
	if sz > 64 {
		return 0, ErrTooBigSize
	}

	res, err := c.LoadBigUInt(sz)
	if err != nil {
		return 0, err
	}
	return res.Uint64(), nil
}

func (c *Slice) MustPreloadUInt(sz uint) uint64 {
	res, err := c.PreloadUInt(sz)
	if err != nil {
		panic(err)
	}
	return res
}

func (c *Slice) PreloadUInt(sz uint) (uint64, error) {
	if sz > 64 {
		return 0, ErrTooBigSize
	}

	b, err := c.PreloadSlice(sz)
	if err != nil {
		return 0, err
	}
	return bytesToNumber(b, sz).Uint64(), nil
}

func (c *Slice) MustLoadInt(sz uint) int64 {
	res, err := c.LoadInt(sz)
	if err != nil {
		panic(err)
	}
	return res
}

func (c *Slice) LoadInt(sz uint) (int64, error) {
	if sz > 64 {
		return 0, ErrTooBigSize
	}

	res, err := c.LoadBigInt(sz)
	if err != nil {
		return 0, err
	}
	return res.Int64(), nil
}

func (c *Slice) MustLoadBoolBit() bool {
	r, err := c.LoadBoolBit()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadBoolBit() (bool, error) {
	res, err := c.LoadUInt(1)
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (c *Slice) MustLoadBigUInt(sz uint) *big.Int {
	r, err := c.LoadBigUInt(sz)
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadBigUInt(sz uint) (*big.Int, error) {
	if sz > 256 {
		return nil, ErrTooBigSize
	}

	b, err := c.LoadSlice(sz)
	if err != nil {
		return nil, err
	}
	return bytesToNumber(b, sz), nil
}

func (c *Slice) LoadBigInt(sz uint) (*big.Int, error) {
	if sz > 257 {
		return nil, ErrTooBigSize
	}

	b, err := c.LoadSlice(sz)
	if err != nil {
		return nil, err
	}

	u := bytesToNumber(b, sz)
	if sz > 0 && u.Bit(int(sz-1)) == 1 {
		// negative, remove two's complement
		return u.Sub(u, new(big.Int).Lsh(big.NewInt(1), sz)), nil
	}
	return u, nil
}

// bytesToNumber converts left aligned sz bits to a number.
func bytesToNumber(b []byte, sz uint) *big.Int {
	v := new(big.Int).SetBytes(b)
	return v.Rsh(v, uint(len(b))*8-sz)
}

func (c *Slice) MustLoadSlice(sz uint) []byte {
	s, err := c.LoadSlice(sz)
	if err != nil {
		panic(err)
	}
	return s
}

func (c *Slice) LoadSlice(sz uint) ([]byte, error) {
	return c.loadSlice(sz, false)
}

func (c *Slice) PreloadSlice(sz uint) ([]byte, error) {
	return c.loadSlice(sz, true)
}

func (c *Slice) MustLoadBytes(num uint) []byte {
	s, err := c.LoadBytes(num)
	if err != nil {
		panic(err)
	}
	return s
}

func (c *Slice) LoadBytes(num uint) ([]byte, error) {
	return c.LoadSlice(num * 8)
}

// loadSlice reads sz bits left aligned, last byte is padded with zeroes.
func (c *Slice) loadSlice(sz uint, preload bool) ([]byte, error) {
	if left := c.bitsSz - c.loadedSz; left < sz {
		return nil, fmt.Errorf("%w, need %d, has %d", ErrNotEnoughData, sz, left)
	}

	ln := (sz + 7) / 8
	res := make([]byte, ln)

	start := c.loadedSz / 8
	offset := c.loadedSz % 8
	for i := uint(0); i < ln; i++ {
		b := c.data[start+i] << offset
		if offset > 0 && start+i+1 < uint(len(c.data)) {
			b |= c.data[start+i+1] >> (8 - offset)
		}
		res[i] = b
	}

	if rest := sz % 8; rest > 0 {
		res[ln-1] &= 0xFF << (8 - rest)
	}

	if !preload {
		c.loadedSz += sz
	}

	return res, nil
}

func (c *Slice) MustLoadAddr() *address.Address {
	a, err := c.LoadAddr()
	if err != nil {
		panic(err)
	}
	return a
}

func (c *Slice) LoadAddr() (*address.Address, error) {
	typ, err := c.LoadUInt(2)
	if err != nil {
		return nil, err
	}

	switch typ {
	case 0:
		return address.NewAddressNone(), nil
	case 2:
		isAnycast, err := c.LoadBoolBit()
		if err != nil {
			return nil, fmt.Errorf("failed to load anycast bit: %w", err)
		}

		if isAnycast {
			return nil, fmt.Errorf("anycast addresses: %w", ErrAddressTypeNotSupported)
		}

		workchain, err := c.LoadInt(8)
		if err != nil {
			return nil, fmt.Errorf("failed to load workchain: %w", err)
		}

		data, err := c.LoadSlice(256)
		if err != nil {
			return nil, fmt.Errorf("failed to load addr data: %w", err)
		}

		return address.NewAddress(0, byte(workchain), data), nil
	default:
		return nil, ErrAddressTypeNotSupported
	}
}

func (c *Slice) BitsLeft() uint {
	return c.bitsSz - c.loadedSz
}

func (c *Slice) RestBits() (uint, []byte, error) {
	left := c.bitsSz - c.loadedSz
	data, err := c.LoadSlice(left)
	return left, data, err
}

func (c *Slice) Copy() *Slice {
	// copy data
	data := append([]byte{}, c.data...)

	return &Slice{
		bitsSz:   c.bitsSz,
		loadedSz: c.loadedSz,
		data:     data,
		refs:     c.refs,
	}
}

// ToBuilder copies the rest of the slice into a new builder, slice position is not changed.
func (c *Slice) ToBuilder() *Builder {
	left := c.bitsSz - c.loadedSz
	data, _ := c.PreloadSlice(left)

	return &Builder{
		bitsSz: left,
		data:   data,
		refs:   append([]*Cell{}, c.refs...),
	}
}

func (c *Slice) MustToCell() *Cell {
	cl, err := c.ToCell()
	if err != nil {
		panic(err)
	}
	return cl
}

// ToCell makes a cell from the unread part of the slice.
func (c *Slice) ToCell() (*Cell, error) {
	return c.ToBuilder().EndCell(), nil
}
