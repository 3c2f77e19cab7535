package address

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sigurn/crc16"

	"github.com/xssnick/ton-collector/utils"
)

type AddrType int

const (
	NoneAddress AddrType = 0
	StdAddress  AddrType = 2
)

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

var ErrInvalidAddress = errors.New("invalid address")

type Address struct {
	flags     flags
	addrType  AddrType
	workchain int32
	bitsLen   uint
	data      []byte
}

type flags struct {
	bounceable bool
	testnet    bool
}

// NewAddress creates std address, flags are in user-friendly form (0x11 bounceable, 0x51 non-bounceable).
func NewAddress(flags byte, workchain byte, data []byte) *Address {
	return &Address{
		flags:     parseFlags(flags),
		addrType:  StdAddress,
		workchain: int32(int8(workchain)),
		bitsLen:   256,
		data:      append([]byte{}, data...),
	}
}

func NewAddressNone() *Address {
	return &Address{
		addrType: NoneAddress,
	}
}

func (a *Address) String() string {
	switch a.addrType {
	case NoneAddress:
		return "NONE"
	case StdAddress:
		var address [36]byte
		copy(address[0:34], a.prepareChecksumData())
		binary.BigEndian.PutUint16(address[34:], a.Checksum())
		return base64.RawURLEncoding.EncodeToString(address[:])
	default:
		return "NOT_SUPPORTED"
	}
}

// StringRaw returns address in "workchain:hex" form.
func (a *Address) StringRaw() string {
	switch a.addrType {
	case NoneAddress:
		return "NONE"
	case StdAddress:
		return fmt.Sprintf("%d:%s", a.workchain, hex.EncodeToString(a.data))
	default:
		return "NOT_SUPPORTED"
	}
}

func (a *Address) Dump() string {
	return fmt.Sprintf("human-readable address: %s isBounceable: %t, isTestnetOnly: %t, data.len: %d", a, a.IsBounceable(), a.IsTestnetOnly(), len(a.data))
}

func (a *Address) Checksum() uint16 {
	return crc16.Checksum(a.prepareChecksumData(), crcTable)
}

func (a *Address) prepareChecksumData() []byte {
	var data [34]byte
	data[0] = a.flagsToByte()
	data[1] = byte(a.workchain)
	copy(data[2:34], a.data)
	return data[:]
}

func (a *Address) flagsToByte() (flags byte) {
	flags = 0b00010001
	if !a.flags.bounceable {
		utils.SetBit(&flags, 6)
	}
	if a.flags.testnet {
		utils.SetBit(&flags, 7)
	}
	return flags
}

func parseFlags(data byte) flags {
	return flags{
		bounceable: !utils.HasBit(data, 6),
		testnet:    utils.HasBit(data, 7),
	}
}

func (a *Address) Copy() *Address {
	return &Address{
		flags:     a.flags,
		addrType:  a.addrType,
		workchain: a.workchain,
		bitsLen:   a.bitsLen,
		data:      append([]byte{}, a.data...),
	}
}

// Equals compares address type, workchain and data, user-friendly flags are ignored.
func (a *Address) Equals(b *Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.addrType == b.addrType && a.workchain == b.workchain && string(a.data) == string(b.data)
}

func (a *Address) IsAddrNone() bool {
	return a.addrType == NoneAddress
}

func (a *Address) Type() AddrType {
	return a.addrType
}

func (a *Address) BitsLen() uint {
	return a.bitsLen
}

func (a *Address) Bounce() *Address {
	return a.WithBounce(true)
}

func (a *Address) NoBounce() *Address {
	return a.WithBounce(false)
}

func (a *Address) WithBounce(bounceable bool) *Address {
	cp := a.Copy()
	cp.flags.bounceable = bounceable
	return cp
}

func (a *Address) Testnet(testnet bool) *Address {
	cp := a.Copy()
	cp.flags.testnet = testnet
	return cp
}

func (a *Address) IsBounceable() bool {
	return a.flags.bounceable
}

func (a *Address) IsTestnetOnly() bool {
	return a.flags.testnet
}

func (a *Address) Workchain() int32 {
	return a.workchain
}

func (a *Address) Data() []byte {
	return a.data
}

func MustParseAddr(addr string) *Address {
	a, err := ParseAddr(addr)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAddr parses user-friendly base64 address, both url-safe and standard alphabets are accepted.
func ParseAddr(addr string) (*Address, error) {
	if len(addr) != 48 {
		return nil, fmt.Errorf("%w: incorrect length %d", ErrInvalidAddress, len(addr))
	}

	addr = strings.NewReplacer("+", "-", "/", "_").Replace(addr)

	data, err := base64.RawURLEncoding.DecodeString(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	checksum := binary.BigEndian.Uint16(data[34:])
	if crc16.Checksum(data[:34], crcTable) != checksum {
		return nil, fmt.Errorf("%w: checksum not matches", ErrInvalidAddress)
	}

	if data[0]&0b00111111 != 0b00010001 {
		return nil, fmt.Errorf("%w: unknown flags %08b", ErrInvalidAddress, data[0])
	}

	return NewAddress(data[0], data[1], data[2:34]), nil
}

func MustParseRawAddr(addr string) *Address {
	a, err := ParseRawAddr(addr)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseRawAddr parses address in "workchain:hex" form, result is bounceable.
func ParseRawAddr(addr string) (*Address, error) {
	parts := strings.SplitN(addr, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: no workchain separator", ErrInvalidAddress)
	}

	wc, err := strconv.ParseInt(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid workchain: %v", ErrInvalidAddress, err)
	}

	data, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", ErrInvalidAddress, err)
	}

	if len(data) != 32 {
		return nil, fmt.Errorf("%w: incorrect data length %d", ErrInvalidAddress, len(data))
	}

	return NewAddress(0, byte(wc), data), nil
}

// ParseAnyAddr accepts both raw and user-friendly forms.
func ParseAnyAddr(addr string) (*Address, error) {
	if strings.Contains(addr, ":") {
		return ParseRawAddr(addr)
	}
	return ParseAddr(addr)
}
