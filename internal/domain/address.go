package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress validates a wallet address against ^0x[a-fA-F0-9]{40}$ and
// returns it in the lower-case form the data API indexes by.
func ParseAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "address", Err: ErrEmptyAddress}
	}
	// common.IsHexAddress also accepts a bare or "0X" prefix; the viewer does not.
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return "", &ValidationError{Field: "address", Value: s, Err: ErrInvalidAddress}
	}
	return strings.ToLower(common.HexToAddress(s).Hex()), nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of a validated address,
// used for display.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}
