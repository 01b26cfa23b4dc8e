package ledger

import (
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
	"golang.org/x/crypto/blake2b"
)

// ComputeAccountsDigest hashes a set of account records deterministically with BLAKE2b-256.
// Each record is encoded as: len(address)|address|free(32B)|reserved(32B)|nlocks|locks...
// with every lock as id(8B)|amount(32B)|until(8B BE)|reasons(1B). Records are sorted by
// address, locks keep their stored order.
func ComputeAccountsDigest(accounts []*types.AccountData) [32]byte {
	if len(accounts) == 0 {
		return [32]byte{}
	}
	sorted := make([]*types.AccountData, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	// New256 only fails for keys longer than 64 bytes
	h, _ := blake2b.New256(nil)
	buf := make([]byte, 8)
	for _, acc := range sorted {
		binary.BigEndian.PutUint64(buf, uint64(len(acc.Address)))
		h.Write(buf)
		h.Write([]byte(acc.Address))
		free := acc.Free.Bytes32()
		h.Write(free[:])
		reserved := acc.Reserved.Bytes32()
		h.Write(reserved[:])
		binary.BigEndian.PutUint64(buf, uint64(len(acc.Locks)))
		h.Write(buf)
		for _, l := range acc.Locks {
			h.Write(l.ID[:])
			amount := l.Amount.Bytes32()
			h.Write(amount[:])
			binary.BigEndian.PutUint64(buf, uint64(l.Until))
			h.Write(buf)
			h.Write(l.Reasons.Encode())
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeStateDigest combines the accounts digest with the total issuance.
func ComputeStateDigest(accounts []*types.AccountData, issuance *uint256.Int) [32]byte {
	accountsDigest := ComputeAccountsDigest(accounts)
	total := issuance.Bytes32()
	return blake2b.Sum256(append(accountsDigest[:], total[:]...))
}

// StateDigest hashes every account record together with the total issuance. Two ledgers with
// the same digest hold identical state.
func (l *Ledger) StateDigest() ([32]byte, error) {
	accounts, err := l.GetAllAccounts()
	if err != nil {
		return [32]byte{}, err
	}
	issuance, err := l.TotalIssuance()
	if err != nil {
		return [32]byte{}, err
	}
	return ComputeStateDigest(accounts, issuance), nil
}
