package cell

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/xssnick/ton-collector/tvm/boc"
)

var ErrTooBigValue = errors.New("too big value")
var ErrNegative = errors.New("value should be non negative")
var ErrRefCannotBeNil = errors.New("ref cannot be nil")
var ErrSmallSlice = errors.New("too small slice for this size")
var ErrTooBigSize = errors.New("too big size")
var ErrTooMuchRefs = errors.New("too much refs")
var ErrNotFit1023 = errors.New("cell data size should fit into 1023 bits")
var ErrNotEnoughData = errors.New("not enough data in slice")
var ErrNoMoreRefs = fmt.Errorf("%w: no more refs exists", ErrNotEnoughData)
var ErrAddressTypeNotSupported = errors.New("address type is not supported")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func (c *Cell) ToBOC() []byte {
	return c.ToBOCWithFlags(true)
}

func (c *Cell) ToBOCWithFlags(withCRC bool) []byte {
	orderCells, index := topoOrder(c)

	cellSizeBytes := bytesForNum(uint64(len(orderCells)))

	var payload []byte
	for _, oc := range orderCells {
		payload = append(payload, oc.serialize(index, cellSizeBytes)...)
	}

	sizeBytes := bytesForNum(uint64(len(payload)))

	header := boc.Header{
		HasCRC32C: withCRC,
		RefSize:   cellSizeBytes,
	}

	var data []byte

	data = append(data, boc.Magic...)
	data = append(data, header.Byte())

	// bytes needed to store size
	data = append(data, byte(sizeBytes))

	// cells num
	data = append(data, dynamicIntBytes(uint64(len(orderCells)), cellSizeBytes)...)

	// roots num (only 1 supported for now)
	data = append(data, dynamicIntBytes(1, cellSizeBytes)...)

	// complete BOCs = 0
	data = append(data, dynamicIntBytes(0, cellSizeBytes)...)

	// len of data
	data = append(data, dynamicIntBytes(uint64(len(payload)), sizeBytes)...)

	// root should have index 0
	data = append(data, dynamicIntBytes(0, cellSizeBytes)...)
	data = append(data, payload...)

	if withCRC {
		checksum := make([]byte, 4)
		binary.LittleEndian.PutUint32(checksum, crc32.Checksum(data, castagnoli))

		data = append(data, checksum...)
	}

	return data
}

func (c *Cell) serialize(index map[string]int, refSizeBytes int) []byte {
	data := append(c.descriptors(), c.paddedData()...)

	for _, ref := range c.refs {
		data = append(data, dynamicIntBytes(uint64(index[string(ref.hash)]), refSizeBytes)...)
	}

	return data
}

// calculateHash fills representation hash and depth, refs must already be hashed.
func (c *Cell) calculateHash() {
	var depth uint16
	for _, ref := range c.refs {
		if ref.depth+1 > depth {
			depth = ref.depth + 1
		}
	}
	c.depth = depth

	hash := sha256.New()
	hash.Write(c.descriptors())
	hash.Write(c.paddedData())

	buf := make([]byte, 2)
	for _, ref := range c.refs {
		binary.BigEndian.PutUint16(buf, ref.depth)
		hash.Write(buf)
	}
	for _, ref := range c.refs {
		hash.Write(ref.hash)
	}

	c.hash = hash.Sum(nil)
}

func (c *Cell) paddedData() []byte {
	// copy
	payload := append([]byte{}, c.data[:(c.bitsSz+7)/8]...)

	if rest := c.bitsSz % 8; rest != 0 {
		// we need to set bit at the end if not whole byte was used
		payload[len(payload)-1] |= 1 << (7 - rest)
	}
	return payload
}

func (c *Cell) descriptors() []byte {
	ceilBytes := (c.bitsSz + 7) / 8

	// refs num + special flag (always 0) + level (always 0)
	return []byte{byte(len(c.refs)), byte(ceilBytes + c.bitsSz/8)}
}

// bytesForNum returns minimal number of bytes (at least 1) to store num.
func bytesForNum(num uint64) int {
	sz := 1
	for num >= 1<<(8*sz) && sz < 8 {
		sz++
	}
	return sz
}

func dynamicIntBytes(val uint64, sz int) []byte {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, val)

	return data[8-sz:]
}
