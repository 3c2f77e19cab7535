package boc

import (
	"github.com/xssnick/ton-collector/utils"
)

var Magic = []byte{0xB5, 0xEE, 0x9C, 0x72}

// Header is the byte which follows Magic:
// has_idx:1 has_crc32c:1 has_cache_bits:1 flags:2 size:3.
type Header struct {
	HasIndex     bool
	HasCRC32C    bool
	HasCacheBits bool
	// RefSize is the number of bytes used for cell indexes.
	RefSize int
}

func ParseHeader(data byte) Header {
	return Header{
		HasIndex:     utils.HasBit(data, 7),
		HasCRC32C:    utils.HasBit(data, 6),
		HasCacheBits: utils.HasBit(data, 5),
		RefSize:      int(data & 0b111),
	}
}

// Byte packs header back, RefSize is truncated to 3 bits.
func (h Header) Byte() byte {
	data := byte(h.RefSize) & 0b111
	if h.HasIndex {
		utils.SetBit(&data, 7)
	}
	if h.HasCRC32C {
		utils.SetBit(&data, 6)
	}
	if h.HasCacheBits {
		utils.SetBit(&data, 5)
	}
	return data
}
