package cell

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math/bits"

	"github.com/xssnick/ton-collector/tvm/boc"
)

var ErrInvalidBOC = errors.New("invalid boc")

// minCellSize is the size of a serialized cell without data and refs, just 2 descriptors.
const minCellSize = 2

// bocReader consumes serialized boc from the front.
type bocReader []byte

func (r *bocReader) next(num int) ([]byte, error) {
	if num < 0 || len(*r) < num {
		return nil, fmt.Errorf("%w, need %d, has %d", ErrNotEnoughData, num, len(*r))
	}

	ret := (*r)[:num]
	*r = (*r)[num:]
	return ret, nil
}

func (r *bocReader) nextByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *bocReader) nextInt(sz int) (int, error) {
	b, err := r.next(sz)
	if err != nil {
		return 0, err
	}
	return dynInt(b), nil
}

func dynInt(data []byte) int {
	tmp := make([]byte, 8)
	copy(tmp[8-len(data):], data)

	return int(binary.BigEndian.Uint64(tmp))
}

func FromBOC(data []byte) (*Cell, error) {
	cells, err := FromBOCMultiRoot(data)
	if err != nil {
		return nil, err
	}

	return cells[0], nil
}

func FromBOCMultiRoot(data []byte) ([]*Cell, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("%w: too short", ErrInvalidBOC)
	}

	if !bytes.Equal(data[:4], boc.Magic) {
		return nil, fmt.Errorf("%w: invalid magic header", ErrInvalidBOC)
	}

	header := boc.ParseHeader(data[4])
	refSz := header.RefSize
	dataSizeBytes := int(data[5])

	if refSz == 0 || refSz > 4 || dataSizeBytes == 0 || dataSizeBytes > 8 {
		return nil, fmt.Errorf("%w: unsupported size bytes", ErrInvalidBOC)
	}

	body := data
	if header.HasCRC32C {
		body = data[:len(data)-4]
		if binary.LittleEndian.Uint32(data[len(data)-4:]) != crc32.Checksum(body, castagnoli) {
			return nil, fmt.Errorf("%w: checksum not matches", ErrInvalidBOC)
		}
	}

	r := bocReader(body[6:])

	sizes := [4]int{}
	for i, sz := range []int{refSz, refSz, refSz, dataSizeBytes} {
		v, err := r.nextInt(sz)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidBOC, err)
		}
		sizes[i] = v
	}
	cellsNum, rootsNum, absentNum, dataLen := sizes[0], sizes[1], sizes[2], sizes[3]

	if rootsNum == 0 || rootsNum > cellsNum {
		return nil, fmt.Errorf("%w: roots num %d is not valid for %d cells", ErrInvalidBOC, rootsNum, cellsNum)
	}

	if absentNum != 0 {
		return nil, fmt.Errorf("%w: absent cells are not supported", ErrInvalidBOC)
	}

	rootsIndex, err := r.next(rootsNum * refSz)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read roots index: %v", ErrInvalidBOC, err)
	}

	if header.HasIndex {
		if _, err = r.next(cellsNum * dataSizeBytes); err != nil {
			return nil, fmt.Errorf("%w: failed to read cells index: %v", ErrInvalidBOC, err)
		}
	}

	payload, err := r.next(dataLen)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read payload, want %d, has %d", ErrInvalidBOC, dataLen, len(r))
	}

	if cellsNum > len(payload)/minCellSize {
		return nil, fmt.Errorf("%w: %d cells cannot fit into %d bytes of payload", ErrInvalidBOC, cellsNum, len(payload))
	}

	cells, err := parseCells(cellsNum, refSz, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	roots := make([]*Cell, rootsNum)
	for i := range roots {
		id := dynInt(rootsIndex[i*refSz : (i+1)*refSz])
		if id >= cellsNum {
			return nil, fmt.Errorf("%w: root index %d is out of range", ErrInvalidBOC, id)
		}
		roots[i] = cells[id]
	}

	return roots, nil
}

type rawCell struct {
	bitsSz uint
	data   []byte
	refs   []int
}

func parseCells(cellsNum, refSzBytes int, data []byte) ([]*Cell, error) {
	r := bocReader(data)

	raw := make([]rawCell, cellsNum)
	for i := range raw {
		// refs_num + is_special * 8 + level * 32
		flags, err := r.nextByte()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse cell refs num, corrupted data", ErrInvalidBOC)
		}

		refsNum := int(flags & 0b111)
		if refsNum > MaxRefsNum {
			return nil, fmt.Errorf("%w: too many refs in cell %d", ErrInvalidBOC, i)
		}

		if flags&0b1000 != 0 || flags>>5 != 0 {
			return nil, fmt.Errorf("%w: exotic cells are not supported", ErrInvalidBOC)
		}

		if flags&0b10000 != 0 {
			// stored hash and depth of level 0
			if _, err = r.next(32 + 2); err != nil {
				return nil, fmt.Errorf("%w: failed to skip cell hashes, corrupted data", ErrInvalidBOC)
			}
		}

		ln, err := r.nextByte()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse cell length, corrupted data", ErrInvalidBOC)
		}

		// round to 1 byte, len in octets
		payload, err := r.next(int(ln/2 + ln%2))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse cell payload, corrupted data", ErrInvalidBOC)
		}
		payload = append([]byte{}, payload...)

		bitsSz := uint(len(payload)) * 8
		if ln%2 != 0 {
			// last byte is not full, it is ended with completion tag
			last := payload[len(payload)-1]
			if last == 0 {
				return nil, fmt.Errorf("%w: no completion tag in cell %d", ErrInvalidBOC, i)
			}
			tz := uint(bits.TrailingZeros8(last))
			bitsSz -= tz + 1
			payload[len(payload)-1] &^= 1 << tz
		}

		refs := make([]int, refsNum)
		for y := range refs {
			id, err := r.nextInt(refSzBytes)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to parse cell references, corrupted data", ErrInvalidBOC)
			}
			if id <= i || id >= cellsNum {
				return nil, fmt.Errorf("%w: invalid ref %d in cell %d", ErrInvalidBOC, id, i)
			}
			refs[y] = id
		}

		raw[i] = rawCell{
			bitsSz: bitsSz,
			data:   payload[:(bitsSz+7)/8],
			refs:   refs,
		}
	}

	// refs always point forward, so we build cells from the end to have children hashed first
	cells := make([]*Cell, cellsNum)
	for i := cellsNum - 1; i >= 0; i-- {
		refs := make([]*Cell, len(raw[i].refs))
		for y, id := range raw[i].refs {
			refs[y] = cells[id]
		}

		c := &Cell{
			bitsSz: raw[i].bitsSz,
			data:   raw[i].data,
			refs:   refs,
		}
		c.calculateHash()
		cells[i] = c
	}

	return cells, nil
}
