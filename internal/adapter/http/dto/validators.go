package dto

import (
	"encoding/hex"
	"math/big"
	"net/url"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	addressRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hashRe     = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	hexBytesRe = regexp.MustCompile(`^0x(?:[0-9a-fA-F]{2})+$`)
	// 78 digits covers the full uint256 range.
	uintStringRe = regexp.MustCompile(`^[0-9]{1,78}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("eth_addr", validateEthAddr)
		_ = v.RegisterValidation("eth_hash", validateEthHash)
		_ = v.RegisterValidation("hex_bytes", validateHexBytes)
		_ = v.RegisterValidation("uint_string", validateUintString)
		_ = v.RegisterValidation("callback_url", validateCallbackURL)
	}
}

// validateEthAddr accepts a 0x-prefixed 20-byte hex address.
func validateEthAddr(fl validator.FieldLevel) bool {
	return addressRe.MatchString(fl.Field().String())
}

// validateEthHash accepts a 0x-prefixed 32-byte hex hash.
func validateEthHash(fl validator.FieldLevel) bool {
	return hashRe.MatchString(fl.Field().String())
}

// validateHexBytes accepts a 0x-prefixed even-length hex string.
func validateHexBytes(fl validator.FieldLevel) bool {
	return hexBytesRe.MatchString(fl.Field().String())
}

// validateUintString accepts a non-negative decimal integer string.
func validateUintString(fl validator.FieldLevel) bool {
	return uintStringRe.MatchString(fl.Field().String())
}

// validateCallbackURL accepts only http/https URLs.
func validateCallbackURL(fl validator.FieldLevel) bool {
	u, err := url.ParseRequestURI(fl.Field().String())
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Handlers use it for URL parameters, which bypass binding validation.
func ValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// ValidHash reports whether s is a 0x-prefixed 32-byte hex hash.
func ValidHash(s string) bool {
	return hashRe.MatchString(s)
}

// ParseAddress converts a validated hex address field.
func ParseAddress(s string) common.Address {
	return common.HexToAddress(s)
}

// ParseHash converts a validated hex hash field.
func ParseHash(s string) common.Hash {
	return common.HexToHash(s)
}

// ParseAmount converts a decimal amount string. Returns false for anything
// that is not a non-negative integer.
func ParseAmount(s string) (*big.Int, bool) {
	if !uintStringRe.MatchString(s) {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return v, true
}

// ParseHexBytes converts a validated 0x-prefixed hex field.
func ParseHexBytes(s string) []byte {
	b, _ := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	return b
}
