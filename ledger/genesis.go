package ledger

import (
	"errors"
	"fmt"

	"github.com/mezonai/currency/config"
	"github.com/mezonai/currency/events"
	"github.com/mezonai/currency/locks"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/types"
)

var ErrAccountExisted = errors.New("account existed")

// InitGenesis creates the endowed accounts and their initial locks in one batch. Genesis
// funds raise the total issuance but are not reported as unbalanced increases.
func (l *Ledger) InitGenesis(g *config.GenesisConfig) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	ed, err := g.ExistentialDepositValue()
	if err != nil {
		return err
	}
	if !ed.Eq(l.existentialDeposit) {
		logx.Warn("LEDGER", fmt.Sprintf("Genesis existential deposit %s differs from ledger's %s", ed.Dec(), l.existentialDeposit.Dec()))
	}

	return l.update("genesis", func(s *session) error {
		for _, e := range g.Endowed {
			who := types.AccountID(e.Address)
			existing, err := s.loadForRead(who)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("could not create genesis account %s: %w", who, ErrAccountExisted)
			}
			free, reserved, err := e.Balances()
			if err != nil {
				return err
			}
			acc, err := s.loadOrCreate(who)
			if err != nil {
				return err
			}
			acc.Free, acc.Reserved = free, reserved
			total, err := acc.Total()
			if err != nil {
				return fmt.Errorf("genesis account %s: %w", who, err)
			}
			if err := s.mint(total); err != nil {
				return err
			}
			s.emit(events.NewBalanceEvent(events.EventEndowed, who, s.now, total))
			if err := s.settle(acc); err != nil {
				return err
			}
		}

		for _, il := range g.Locks {
			lock, err := il.Lock()
			if err != nil {
				return err
			}
			acc, err := s.loadForRead(types.AccountID(il.Address))
			if err != nil {
				return err
			}
			if acc == nil {
				continue
			}
			acc.Locks = locks.Set(acc.Locks, lock)
			s.emit(events.NewLockSet(acc.Address, s.now, lock))
			s.put(acc)
		}

		logx.Info("LEDGER", fmt.Sprintf("Genesis created %d accounts", len(g.Endowed)))
		return nil
	})
}
