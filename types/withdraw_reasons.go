package types

import (
	"fmt"
	"sort"
	"strings"
)

// WithdrawReasons is the set of reasons funds leave an account. It is persisted as a single
// signed byte; bits 4-7 are reserved and never set.
type WithdrawReasons int8

// Single-reason members of the set.
const (
	TransactionPayment WithdrawReasons = 1 << iota
	Transfer
	Reserve
	Fee
)

const allWithdrawReasons = TransactionPayment | Transfer | Reserve | Fee

var withdrawReasonNames = map[WithdrawReasons]string{
	TransactionPayment: "transaction_payment",
	Transfer:           "transfer",
	Reserve:            "reserve",
	Fee:                "fee",
}

func NewWithdrawReasons(reasons ...WithdrawReasons) WithdrawReasons {
	var set WithdrawReasons
	for _, r := range reasons {
		set |= r
	}
	return set & allWithdrawReasons
}

// AllWithdrawReasons is the set a lock uses to restrict every kind of withdrawal.
func AllWithdrawReasons() WithdrawReasons {
	return allWithdrawReasons
}

func (r WithdrawReasons) Union(other WithdrawReasons) WithdrawReasons {
	return r | other
}

func (r WithdrawReasons) Intersects(other WithdrawReasons) bool {
	return r&other != 0
}

// Contains reports whether every reason of other is also in r.
func (r WithdrawReasons) Contains(other WithdrawReasons) bool {
	return r&other == other
}

func (r WithdrawReasons) Without(other WithdrawReasons) WithdrawReasons {
	return r &^ other
}

func (r WithdrawReasons) IsEmpty() bool {
	return r == 0
}

func (r WithdrawReasons) Encode() []byte {
	return []byte{byte(r)}
}

func DecodeWithdrawReasons(data []byte) (WithdrawReasons, error) {
	if len(data) != 1 {
		return 0, fmt.Errorf("withdraw reasons: expected 1 byte, got %d", len(data))
	}
	r := WithdrawReasons(int8(data[0]))
	if r&^allWithdrawReasons != 0 {
		return 0, fmt.Errorf("withdraw reasons: reserved bits set in %08b", data[0])
	}
	return r, nil
}

// Names lists the set members in bit order.
func (r WithdrawReasons) Names() []string {
	names := make([]string, 0, 4)
	for bit := TransactionPayment; bit <= Fee; bit <<= 1 {
		if r&bit != 0 {
			names = append(names, withdrawReasonNames[bit])
		}
	}
	return names
}

func (r WithdrawReasons) String() string {
	if r.IsEmpty() {
		return "none"
	}
	return strings.Join(r.Names(), "|")
}

// ParseWithdrawReasons accepts reason names as used in config files and on the command line.
// "all" selects every reason.
func ParseWithdrawReasons(names []string) (WithdrawReasons, error) {
	var set WithdrawReasons
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if name == "all" {
			set |= allWithdrawReasons
			continue
		}
		found := false
		for bit, n := range withdrawReasonNames {
			if n == name {
				set |= bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown withdraw reason %q (known: %s)", name, knownReasonNames())
		}
	}
	return set, nil
}

func knownReasonNames() string {
	names := make([]string, 0, len(withdrawReasonNames))
	for _, n := range withdrawReasonNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
