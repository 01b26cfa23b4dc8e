package store

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/types"
)

// StateMetaStore keeps ledger-wide values that do not belong to any account.
// Keys:
// - StateKeyIssuance    => decimal total issuance
// - StateKeyBlockNumber => 8-byte big-endian current block number
type StateMetaStore interface {
	TotalIssuance() (*uint256.Int, error)
	SetTotalIssuance(v *uint256.Int) error
	StageTotalIssuance(batch db.DatabaseBatch, v *uint256.Int)
	BlockNumber() (types.Moment, error)
	SetBlockNumber(n types.Moment) error
	StageBlockNumber(batch db.DatabaseBatch, n types.Moment)
}

type GenericStateMetaStore struct {
	provider db.DatabaseProvider
}

func NewGenericStateMetaStore(provider db.DatabaseProvider) *GenericStateMetaStore {
	return &GenericStateMetaStore{provider: provider}
}

// TotalIssuance returns zero when nothing has been minted yet.
func (s *GenericStateMetaStore) TotalIssuance() (*uint256.Int, error) {
	value, err := s.provider.Get([]byte(StateKeyIssuance))
	if err != nil {
		return nil, fmt.Errorf("failed to get total issuance: %w", err)
	}
	if len(value) == 0 {
		return types.ZeroBalance(), nil
	}
	v, err := types.ParseBalance(string(value))
	if err != nil {
		return nil, fmt.Errorf("corrupt total issuance: %w", err)
	}
	return v, nil
}

func (s *GenericStateMetaStore) SetTotalIssuance(v *uint256.Int) error {
	if err := s.provider.Put([]byte(StateKeyIssuance), []byte(v.Dec())); err != nil {
		return fmt.Errorf("failed to store total issuance: %w", err)
	}
	return nil
}

func (s *GenericStateMetaStore) StageTotalIssuance(batch db.DatabaseBatch, v *uint256.Int) {
	batch.Put([]byte(StateKeyIssuance), []byte(v.Dec()))
}

func (s *GenericStateMetaStore) BlockNumber() (types.Moment, error) {
	value, err := s.provider.Get([]byte(StateKeyBlockNumber))
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	if len(value) == 0 {
		return 0, nil
	}
	if len(value) != 8 {
		return 0, fmt.Errorf("invalid block number length: %d", len(value))
	}
	return types.Moment(binary.BigEndian.Uint64(value)), nil
}

func (s *GenericStateMetaStore) SetBlockNumber(n types.Moment) error {
	if err := s.provider.Put([]byte(StateKeyBlockNumber), encodeBlockNumber(n)); err != nil {
		return fmt.Errorf("failed to store block number %d: %w", n, err)
	}
	return nil
}

func (s *GenericStateMetaStore) StageBlockNumber(batch db.DatabaseBatch, n types.Moment) {
	batch.Put([]byte(StateKeyBlockNumber), encodeBlockNumber(n))
}

func encodeBlockNumber(n types.Moment) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}
