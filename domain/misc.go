package domain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

type ChainId int32

type Address string

// EmptyAddress is the sentinel for the chain's native currency and for
// an unbound registry entry.
const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) ToHexString() (string, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok {
		return "", xerrors.Errorf("invalid id %s", i)
	}
	return fmt.Sprintf("%064x", id), nil
}

type TokenType int

const (
	// TokenTypeUnique is a strictly-unique token, quantity fixed at 1
	TokenTypeUnique TokenType = 721
	// TokenTypeMultiUnit is a fractional/multi-unit token
	TokenTypeMultiUnit TokenType = 1155
)

// Selector is a 0x-prefixed, lowercase, 4-byte function identifier,
// the dispatch key of the diamond routing table.
type Selector string

func (s Selector) ToLower() Selector {
	return Selector(strings.ToLower(string(s)))
}

func (s Selector) String() string {
	return string(s)
}

func (s Selector) IsValid() bool {
	str := string(s.ToLower())
	if len(str) != 10 || !strings.HasPrefix(str, "0x") {
		return false
	}
	_, err := hex.DecodeString(str[2:])
	return err == nil
}

// Bytes returns the selector's 4 raw bytes.
func (s Selector) Bytes() ([]byte, error) {
	if !s.IsValid() {
		return nil, xerrors.Errorf("invalid selector %q", s)
	}
	return hex.DecodeString(string(s.ToLower())[2:])
}

// Uint32 returns the selector interpreted as an unsigned big-endian
// 4-byte integer. Used for the canonical ordering of the fingerprint.
func (s Selector) Uint32() (uint32, error) {
	b, err := s.Bytes()
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

type TxHash string

type BlockNumber uint64

// FeeDenominator is the fixed denominator of the innovation fee,
// e.g. fee 1000 is 1%.
const FeeDenominator = 100000
