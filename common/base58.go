package common

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLength is the decoded size of an account address (an ed25519 public key).
const AddressLength = 32

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	bytes, err := base58.Decode(base58Str)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// IsValidBase58 checks if a string is valid base58
func IsValidBase58(str string) bool {
	decoded, err := base58.Decode(str)
	return err == nil && len(decoded) > 0
}

// IsValidAddress checks that addr is the base58 form of a 32-byte key.
func IsValidAddress(addr string) bool {
	decoded, err := base58.Decode(addr)
	return err == nil && len(decoded) == AddressLength
}
