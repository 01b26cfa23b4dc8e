package types

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/holiman/uint256"
)

var (
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")
)

// ZeroBalance returns a fresh zero value. Balances are pointers, never share them between records.
func ZeroBalance() *uint256.Int {
	return uint256.NewInt(0)
}

// CheckedAdd returns a+b or ErrOverflow. Neither operand is modified.
func CheckedAdd(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%s + %s: %w", a.Dec(), b.Dec(), ErrOverflow)
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrUnderflow. Neither operand is modified.
func CheckedSub(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, fmt.Errorf("%s - %s: %w", a.Dec(), b.Dec(), ErrUnderflow)
	}
	return diff, nil
}

// SaturatingSub returns a-b, or zero when b > a.
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return ZeroBalance()
	}
	return new(uint256.Int).Sub(a, b)
}

func MinBalance(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}
	return b.Clone()
}

func MaxBalance(a, b *uint256.Int) *uint256.Int {
	if a.Gt(b) {
		return a.Clone()
	}
	return b.Clone()
}

func BalanceFromUint64(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// BalanceToUint64 converts b, failing when it does not fit in 64 bits.
func BalanceToUint64(b *uint256.Int) (uint64, error) {
	if !b.IsUint64() {
		return 0, fmt.Errorf("balance %s does not fit uint64: %w", b.Dec(), ErrOverflow)
	}
	return b.Uint64(), nil
}

func BalanceFromInt(v int) (*uint256.Int, error) {
	if v < 0 {
		return nil, fmt.Errorf("negative balance %d: %w", v, ErrUnderflow)
	}
	return uint256.NewInt(uint64(v)), nil
}

// BalanceToInt converts b to the platform int, failing when it does not fit.
func BalanceToInt(b *uint256.Int) (int, error) {
	if !b.IsUint64() || b.Uint64() > math.MaxInt {
		return 0, fmt.Errorf("balance %s does not fit int: %w", b.Dec(), ErrOverflow)
	}
	return int(b.Uint64()), nil
}

// ParseBalance parses a decimal amount. Underscores may be used as digit separators ("1_000").
func ParseBalance(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", s, err)
	}
	return v, nil
}

func FormatBalance(b *uint256.Int) string {
	if b == nil {
		return "0"
	}
	return b.Dec()
}
