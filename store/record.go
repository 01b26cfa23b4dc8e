package store

import (
	"fmt"

	"github.com/mezonai/currency/jsonx"
	"github.com/mezonai/currency/types"
)

// accountRecord is the persisted form of types.AccountData. Balances are decimal strings so
// the encoding is independent of the in-memory integer width.
type accountRecord struct {
	Address  string       `json:"address"`
	Free     string       `json:"free"`
	Reserved string       `json:"reserved"`
	Locks    []lockRecord `json:"locks,omitempty"`
}

type lockRecord struct {
	ID      string `json:"id"`
	Amount  string `json:"amount"`
	Until   uint64 `json:"until"`
	Reasons int8   `json:"reasons"`
}

func encodeAccount(acc *types.AccountData) ([]byte, error) {
	rec := accountRecord{
		Address:  string(acc.Address),
		Free:     types.FormatBalance(acc.Free),
		Reserved: types.FormatBalance(acc.Reserved),
	}
	for _, l := range acc.Locks {
		rec.Locks = append(rec.Locks, lockRecord{
			ID:      l.ID.Hex(),
			Amount:  types.FormatBalance(l.Amount),
			Until:   uint64(l.Until),
			Reasons: int8(l.Reasons),
		})
	}
	data, err := jsonx.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account %s: %w", acc.Address, err)
	}
	return data, nil
}

func decodeAccount(data []byte) (*types.AccountData, error) {
	var rec accountRecord
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	free, err := types.ParseBalance(rec.Free)
	if err != nil {
		return nil, fmt.Errorf("account %s free balance: %w", rec.Address, err)
	}
	reserved, err := types.ParseBalance(rec.Reserved)
	if err != nil {
		return nil, fmt.Errorf("account %s reserved balance: %w", rec.Address, err)
	}

	acc := &types.AccountData{
		Address:  types.AccountID(rec.Address),
		Free:     free,
		Reserved: reserved,
	}
	for _, lr := range rec.Locks {
		id, err := types.ParseLockIdentifier(lr.ID)
		if err != nil {
			return nil, fmt.Errorf("account %s lock id: %w", rec.Address, err)
		}
		amount, err := types.ParseBalance(lr.Amount)
		if err != nil {
			return nil, fmt.Errorf("account %s lock %s amount: %w", rec.Address, id, err)
		}
		reasons, err := types.DecodeWithdrawReasons([]byte{byte(lr.Reasons)})
		if err != nil {
			return nil, fmt.Errorf("account %s lock %s: %w", rec.Address, id, err)
		}
		acc.Locks = append(acc.Locks, types.Lock{
			ID:      id,
			Amount:  amount,
			Until:   types.Moment(lr.Until),
			Reasons: reasons,
		})
	}
	return acc, nil
}
