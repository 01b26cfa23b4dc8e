package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/jsonx"
	"github.com/mezonai/currency/ledger"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/store"
	"github.com/mezonai/currency/types"
)

const FileName = "snapshot-latest.json"

var (
	ErrDigestMismatch   = errors.New("snapshot digest does not match its records")
	ErrStoreNotEmpty    = errors.New("refusing to restore into a store that already holds accounts")
	ErrIssuanceUnequal  = errors.New("snapshot issuance does not equal the sum of its balances")
	ErrDuplicateAccount = errors.New("snapshot lists an account more than once")
)

type SnapshotMeta struct {
	Block              types.Moment `json:"block"`
	Digest             string       `json:"digest"`
	TotalIssuance      string       `json:"total_issuance"`
	ExistentialDeposit string       `json:"existential_deposit"`
}

type SnapshotFile struct {
	Meta     SnapshotMeta        `json:"meta"`
	Accounts []types.AccountData `json:"accounts"`
}

// Capture reads the full ledger state into a snapshot.
func Capture(l *ledger.Ledger) (*SnapshotFile, error) {
	accounts, err := l.GetAllAccounts()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	issuance, err := l.TotalIssuance()
	if err != nil {
		return nil, fmt.Errorf("read total issuance: %w", err)
	}
	digest, err := l.StateDigest()
	if err != nil {
		return nil, fmt.Errorf("compute state digest: %w", err)
	}

	file := &SnapshotFile{
		Meta: SnapshotMeta{
			Block:              l.Now(),
			Digest:             hex.EncodeToString(digest[:]),
			TotalIssuance:      issuance.Dec(),
			ExistentialDeposit: l.MinimumBalance().Dec(),
		},
		Accounts: make([]types.AccountData, len(accounts)),
	}
	for i, acc := range accounts {
		file.Accounts[i] = *acc
	}
	return file, nil
}

// WriteSnapshot captures l and writes it as the only snapshot in dir.
func WriteSnapshot(dir string, l *ledger.Ledger) (string, error) {
	file, err := Capture(l)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}
	latestPath := filepath.Join(dir, FileName)
	data, err := jsonx.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(latestPath, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}

	if err := cleanupOldSnapshots(dir, latestPath); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots:", err)
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Wrote %d accounts at block %d to %s", len(file.Accounts), file.Meta.Block, latestPath))
	return latestPath, nil
}

// ReadSnapshot loads a snapshot file from disk
func ReadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SnapshotFile
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &s, nil
}

// Restore loads a snapshot into empty stores. The records must hash to the recorded digest
// and no component may be below the recorded existential deposit. Everything is written in
// one batch.
func Restore(stores *store.Stores, file *SnapshotFile) error {
	existing, err := stores.Accounts.GetAll()
	if err != nil {
		return fmt.Errorf("list existing accounts: %w", err)
	}
	if len(existing) > 0 {
		return ErrStoreNotEmpty
	}

	issuance, err := types.ParseBalance(file.Meta.TotalIssuance)
	if err != nil {
		return fmt.Errorf("snapshot total issuance: %w", err)
	}
	ed, err := types.ParseBalance(file.Meta.ExistentialDeposit)
	if err != nil {
		return fmt.Errorf("snapshot existential deposit: %w", err)
	}

	accounts := make([]*types.AccountData, len(file.Accounts))
	seen := make(map[types.AccountID]struct{}, len(file.Accounts))
	sum := types.ZeroBalance()
	for i := range file.Accounts {
		acc := file.Accounts[i].Clone()
		if _, dup := seen[acc.Address]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, acc.Address)
		}
		seen[acc.Address] = struct{}{}
		if acc.IsDead() {
			return fmt.Errorf("snapshot account %s has no balance", acc.Address)
		}
		if isDust(acc.Free, ed) || isDust(acc.Reserved, ed) {
			return fmt.Errorf("snapshot account %s holds less than the existential deposit %s", acc.Address, ed.Dec())
		}
		total, err := acc.Total()
		if err != nil {
			return fmt.Errorf("snapshot account %s: %w", acc.Address, err)
		}
		if sum, err = types.CheckedAdd(sum, total); err != nil {
			return fmt.Errorf("snapshot balances: %w", err)
		}
		accounts[i] = acc
	}
	if !sum.Eq(issuance) {
		return fmt.Errorf("%w: issuance %s, balances %s", ErrIssuanceUnequal, issuance.Dec(), sum.Dec())
	}

	digest := ledger.ComputeStateDigest(accounts, issuance)
	if got := hex.EncodeToString(digest[:]); got != file.Meta.Digest {
		return fmt.Errorf("%w: want %s, got %s", ErrDigestMismatch, file.Meta.Digest, got)
	}

	err = db.NewDBTxManager(stores.Provider).WithBatch(func(batch db.DatabaseBatch) error {
		for _, acc := range accounts {
			if err := stores.Accounts.StageStore(batch, acc); err != nil {
				return err
			}
		}
		stores.StateMeta.StageTotalIssuance(batch, issuance)
		stores.StateMeta.StageBlockNumber(batch, file.Meta.Block)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Restored %d accounts at block %d", len(accounts), file.Meta.Block))
	return nil
}

func isDust(v, ed *uint256.Int) bool {
	return !v.IsZero() && v.Lt(ed)
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		filePath := filepath.Join(dir, file.Name())
		if filePath != latestPath {
			if err := os.Remove(filePath); err != nil {
				logx.Error("SNAPSHOT", "Failed to remove old snapshot:", filePath, err)
			}
		}
	}

	return nil
}
