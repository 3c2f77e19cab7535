package cell

import (
	"encoding/binary"
	"math/big"

	"github.com/xssnick/ton-collector/address"
)

const (
	MaxBitsSize = 1023
	MaxRefsNum  = 4
)

type Builder struct {
	bitsSz uint
	data   []byte

	// store it as slice of pointers to make indexing logic cleaner on parse,
	// from outside it should always come as object to not have problems
	refs []*Cell
}

func BeginCell() *Builder {
	return &Builder{}
}

func (b *Builder) MustStoreCoins(value uint64) *Builder {
	err := b.StoreCoins(value)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreCoins(value uint64) error {
	return b.StoreBigCoins(new(big.Int).SetUint64(value))
}

func (b *Builder) MustStoreBigCoins(value *big.Int) *Builder {
	err := b.StoreBigCoins(value)
	if err != nil {
		panic(err)
	}
	return b
}

// StoreBigCoins stores value as VarUInteger 16: 4 bits of length in bytes, then the value itself.
func (b *Builder) StoreBigCoins(value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegative
	}

	ln := uint((value.BitLen() + 7) >> 3)
	if ln >= 16 {
		return ErrTooBigValue
	}

	if b.bitsSz+4+(ln*8) > MaxBitsSize {
		return ErrNotFit1023
	}

	err := b.StoreUInt(uint64(ln), 4)
	if err != nil {
		return err
	}

	return b.StoreBigUInt(value, ln*8)
}

func (b *Builder) MustStoreUInt(value uint64, sz uint) *Builder {
	err := b.StoreUInt(value, sz)
	if err != nil {
		panic(err)
	}
	return b
}

// StoreUInt appends value as sz bits, most significant bit first.
// Value must fit into sz bits, it is never truncated.
func (b *Builder) StoreUInt(value uint64, sz uint) error {
	if sz > 64 {
		return b.StoreBigUInt(new(big.Int).SetUint64(value), sz)
	}

	if sz < 64 && value>>sz != 0 {
		return ErrTooBigValue
	}

	if sz == 0 {
		return nil
	}

	value <<= 64 - sz
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)

	return b.StoreSlice(buf, sz)
}

func (b *Builder) MustStoreInt(value int64, sz uint) *Builder {
	err := b.StoreInt(value, sz)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreInt(value int64, sz uint) error {
	return b.StoreBigInt(big.NewInt(value), sz)
}

func (b *Builder) MustStoreBoolBit(value bool) *Builder {
	err := b.StoreBoolBit(value)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreBoolBit(value bool) error {
	var i uint64
	if value {
		i = 1
	}
	return b.StoreUInt(i, 1)
}

func (b *Builder) MustStoreBigUInt(value *big.Int, sz uint) *Builder {
	err := b.StoreBigUInt(value, sz)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreBigUInt(value *big.Int, sz uint) error {
	if sz > 256 {
		return ErrTooBigSize
	}

	if value.Sign() == -1 {
		return ErrNegative
	}

	return b.storeBig(value, sz)
}

func (b *Builder) MustStoreBigInt(value *big.Int, sz uint) *Builder {
	err := b.StoreBigInt(value, sz)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreBigInt(value *big.Int, sz uint) error {
	if sz > 257 {
		return ErrTooBigSize
	}

	if sz == 0 {
		if value.Sign() != 0 {
			return ErrTooBigValue
		}
		return nil
	}

	one := big.NewInt(1)

	// allowed range is [-2^(sz-1), 2^(sz-1))
	limit := new(big.Int).Lsh(one, sz-1)
	if value.Cmp(limit) >= 0 || value.Cmp(new(big.Int).Neg(limit)) < 0 {
		return ErrTooBigValue
	}

	if value.Sign() == -1 {
		// two's complement in sz bits
		value = new(big.Int).Add(value, new(big.Int).Lsh(one, sz))
	}

	return b.storeBig(value, sz)
}

func (b *Builder) storeBig(value *big.Int, sz uint) error {
	if value.BitLen() > int(sz) {
		return ErrTooBigValue
	}

	if sz == 0 {
		return nil
	}

	// move bits to the left side of bytes to fit into size
	ln := (sz + 7) / 8
	aligned := new(big.Int).Lsh(value, ln*8-sz)

	return b.StoreSlice(aligned.FillBytes(make([]byte, ln)), sz)
}

func (b *Builder) MustStoreAddr(addr *address.Address) *Builder {
	err := b.StoreAddr(addr)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreAddr(addr *address.Address) error {
	if addr == nil || addr.IsAddrNone() {
		if b.bitsSz+2 > MaxBitsSize {
			return ErrNotFit1023
		}
		return b.StoreUInt(0, 2)
	}

	switch addr.Type() {
	case address.StdAddress:
		if b.bitsSz+2+1+8+256 > MaxBitsSize {
			return ErrNotFit1023
		}

		// addr std
		err := b.StoreUInt(0b10, 2)
		if err != nil {
			return err
		}

		// anycast
		err = b.StoreUInt(0b0, 1)
		if err != nil {
			return err
		}

		err = b.StoreInt(int64(addr.Workchain()), 8)
		if err != nil {
			return err
		}

		return b.StoreSlice(addr.Data(), 256)
	}

	return ErrAddressTypeNotSupported
}

func (b *Builder) MustStoreMaybeRef(ref *Cell) *Builder {
	err := b.StoreMaybeRef(ref)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreMaybeRef(ref *Cell) error {
	if ref == nil {
		return b.StoreUInt(0, 1)
	}

	// we need early checks to do 2 stores atomically
	if len(b.refs) >= MaxRefsNum {
		return ErrTooMuchRefs
	}
	if b.bitsSz+1 > MaxBitsSize {
		return ErrNotFit1023
	}

	b.MustStoreUInt(1, 1).MustStoreRef(ref)
	return nil
}

func (b *Builder) MustStoreRef(ref *Cell) *Builder {
	err := b.StoreRef(ref)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreRef(ref *Cell) error {
	if len(b.refs) >= MaxRefsNum {
		return ErrTooMuchRefs
	}

	if ref == nil {
		return ErrRefCannotBeNil
	}

	b.refs = append(b.refs, ref)

	return nil
}

func (b *Builder) MustStoreSlice(bytes []byte, sz uint) *Builder {
	err := b.StoreSlice(bytes, sz)
	if err != nil {
		panic(err)
	}
	return b
}

// StoreSlice appends exactly sz bits taken from the beginning of bytes.
func (b *Builder) StoreSlice(bytes []byte, sz uint) error {
	if sz == 0 {
		return nil
	}

	if uint(len(bytes)) < (sz+7)/8 {
		return ErrSmallSlice
	}

	if b.bitsSz+sz > MaxBitsSize {
		return ErrNotFit1023
	}

	leftSz := sz
	unusedBits := 8 - (b.bitsSz % 8)

	for offset := 0; leftSz > 0; offset++ {
		bits := uint(8)
		if leftSz < 8 {
			bits = leftSz
		}
		leftSz -= bits

		// clear unused part of byte if needed
		v := bytes[offset] & (0xFF << (8 - bits))

		// if previous byte was not filled, we need to move bits to fill it
		if unusedBits != 8 {
			b.data[len(b.data)-1] |= v >> (8 - unusedBits)
			if bits > unusedBits {
				b.data = append(b.data, v<<unusedBits)
			}
			continue
		}

		b.data = append(b.data, v)
	}

	b.bitsSz += sz

	return nil
}

func (b *Builder) MustPrependSlice(bytes []byte, sz uint) *Builder {
	err := b.PrependSlice(bytes, sz)
	if err != nil {
		panic(err)
	}
	return b
}

// PrependSlice inserts exactly sz bits of bytes in front of already stored data.
func (b *Builder) PrependSlice(bytes []byte, sz uint) error {
	if b.bitsSz+sz > MaxBitsSize {
		return ErrNotFit1023
	}

	front := &Builder{}
	err := front.StoreSlice(bytes, sz)
	if err != nil {
		return err
	}

	err = front.StoreSlice(b.data, b.bitsSz)
	if err != nil {
		return err
	}

	b.bitsSz = front.bitsSz
	b.data = front.data

	return nil
}

func (b *Builder) MustStoreBuilder(builder *Builder) *Builder {
	err := b.StoreBuilder(builder)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) StoreBuilder(builder *Builder) error {
	if len(b.refs)+len(builder.refs) > MaxRefsNum {
		return ErrTooMuchRefs
	}

	if b.bitsSz+builder.bitsSz > MaxBitsSize {
		return ErrNotFit1023
	}

	b.refs = append(b.refs, builder.refs...)
	b.MustStoreSlice(builder.data, builder.bitsSz)

	return nil
}

func (b *Builder) RefsUsed() int {
	return len(b.refs)
}

func (b *Builder) BitsUsed() uint {
	return b.bitsSz
}

func (b *Builder) BitsLeft() uint {
	return MaxBitsSize - b.bitsSz
}

func (b *Builder) RefsLeft() uint {
	return MaxRefsNum - uint(len(b.refs))
}

func (b *Builder) Copy() *Builder {
	// copy data
	data := append([]byte{}, b.data...)

	return &Builder{
		bitsSz: b.bitsSz,
		data:   data,
		refs:   append([]*Cell{}, b.refs...),
	}
}

// EndCell finalizes builder state into an immutable cell. The builder itself stays usable,
// later writes to it never affect cells created before.
func (b *Builder) EndCell() *Cell {
	c := &Cell{
		bitsSz: b.bitsSz,
		data:   append([]byte{}, b.data...),
		refs:   append([]*Cell{}, b.refs...),
	}
	c.calculateHash()

	return c
}
