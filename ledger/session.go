package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/events"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/monitoring"
	"github.com/mezonai/currency/types"
	"github.com/mezonai/currency/utils"
)

// session is the working view of one ledger operation. Records are cloned on first load and
// mutated in the overlay; nothing reaches the stores until commit. Hook calls and events are
// queued and only delivered once the commit succeeded.
type session struct {
	ledger  *Ledger
	now     types.Moment
	overlay map[types.AccountID]*types.AccountData
	existed map[types.AccountID]bool
	dirty   []types.AccountID

	issuance      *uint256.Int
	issuanceDirty bool

	effects []func() error
	events  []events.LedgerEvent
}

func newSession(l *Ledger) *session {
	return &session{
		ledger:  l,
		now:     l.clock.Now(),
		overlay: make(map[types.AccountID]*types.AccountData),
		existed: make(map[types.AccountID]bool),
	}
}

// loadForRead returns the staged record of who, or nil if the account does not exist.
func (s *session) loadForRead(who types.AccountID) (*types.AccountData, error) {
	if acc, ok := s.overlay[who]; ok {
		return acc, nil
	}
	base, err := s.ledger.accountStore.GetByAddr(who)
	if err != nil {
		return nil, fmt.Errorf("could not load account %s: %w", who, err)
	}
	s.existed[who] = base != nil
	if base == nil {
		s.overlay[who] = nil
		return nil, nil
	}
	cp := base.Clone()
	s.overlay[who] = cp
	return cp, nil
}

// loadOrCreate returns the staged record of who, starting an empty one if it does not exist.
// The new record is only persisted if it is written back with put.
func (s *session) loadOrCreate(who types.AccountID) (*types.AccountData, error) {
	acc, err := s.loadForRead(who)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}
	acc = types.NewAccountData(who)
	s.overlay[who] = acc
	return acc, nil
}

func (s *session) markDirty(who types.AccountID) {
	for _, d := range s.dirty {
		if d == who {
			return
		}
	}
	s.dirty = append(s.dirty, who)
}

// put records that acc changed. If both components ended up zero the record is reaped.
func (s *session) put(acc *types.AccountData) {
	s.markDirty(acc.Address)
	if !acc.IsDead() {
		return
	}
	s.overlay[acc.Address] = nil
	if !s.existed[acc.Address] {
		return
	}
	who := acc.Address
	logx.Info("LEDGER", fmt.Sprintf("Reaping account %s", utils.ShortenLog(string(who))))
	s.emit(events.NewBalanceEvent(events.EventReaped, who, s.now, types.ZeroBalance()))
	s.effects = append(s.effects, func() error {
		s.ledger.hooks.FreeBalanceZero.OnFreeBalanceZero(who)
		return nil
	})
}

// settle collapses every component of acc that fell below the existential deposit, burns the
// dust and writes the record back. It must run after the operation queued its own hooks.
func (s *session) settle(acc *types.AccountData) error {
	ed := s.ledger.existentialDeposit
	dust := types.ZeroBalance()
	if !acc.Free.IsZero() && acc.Free.Lt(ed) {
		dust.Add(dust, acc.Free)
		acc.Free = types.ZeroBalance()
	}
	if !acc.Reserved.IsZero() && acc.Reserved.Lt(ed) {
		dust.Add(dust, acc.Reserved)
		acc.Reserved = types.ZeroBalance()
	}
	if !dust.IsZero() {
		if err := s.burn(dust); err != nil {
			return err
		}
		s.emit(events.NewBalanceEvent(events.EventDustLost, acc.Address, s.now, dust))
		s.onDecrease(dust)
	}
	if acc.IsDead() {
		acc.Locks = nil
	}
	s.put(acc)
	return nil
}

func (s *session) totalIssuance() (*uint256.Int, error) {
	if s.issuance == nil {
		v, err := s.ledger.stateMeta.TotalIssuance()
		if err != nil {
			return nil, err
		}
		s.issuance = v
	}
	return s.issuance, nil
}

func (s *session) mint(amount *uint256.Int) error {
	current, err := s.totalIssuance()
	if err != nil {
		return err
	}
	next, err := types.CheckedAdd(current, amount)
	if err != nil {
		return fmt.Errorf("total issuance: %w", err)
	}
	s.issuance = next
	s.issuanceDirty = true
	return nil
}

func (s *session) burn(amount *uint256.Int) error {
	current, err := s.totalIssuance()
	if err != nil {
		return err
	}
	next, err := types.CheckedSub(current, amount)
	if err != nil {
		logx.Error("LEDGER", fmt.Sprintf("Burning %s exceeds total issuance %s", amount.Dec(), current.Dec()))
		next = types.ZeroBalance()
	}
	s.issuance = next
	s.issuanceDirty = true
	return nil
}

func (s *session) onIncrease(amount *uint256.Int) {
	v := amount.Clone()
	s.effects = append(s.effects, func() error {
		return s.ledger.hooks.Increase.OnUnbalancedIncrease(v)
	})
}

func (s *session) onDecrease(amount *uint256.Int) {
	v := amount.Clone()
	s.effects = append(s.effects, func() error {
		return s.ledger.hooks.Decrease.OnUnbalancedDecrease(v)
	})
}

func (s *session) onDilution(minted, portion *uint256.Int) {
	m, p := minted.Clone(), portion.Clone()
	s.effects = append(s.effects, func() error {
		s.ledger.hooks.Dilution.OnDilution(m, p)
		return nil
	})
}

func (s *session) emit(event events.LedgerEvent) {
	s.events = append(s.events, event)
}

// commit writes every dirty record and the issuance in one batch.
func (s *session) commit() error {
	if len(s.dirty) == 0 && !s.issuanceDirty {
		return nil
	}
	err := s.ledger.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		for _, who := range s.dirty {
			acc := s.overlay[who]
			if acc == nil {
				if s.existed[who] {
					s.ledger.accountStore.StageRemove(batch, who)
				}
				continue
			}
			if err := s.ledger.accountStore.StageStore(batch, acc); err != nil {
				return err
			}
		}
		if s.issuanceDirty {
			s.ledger.stateMeta.StageTotalIssuance(batch, s.issuance)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not commit ledger update: %w", err)
	}
	if s.issuanceDirty {
		monitoring.SetTotalIssuance(s.issuance)
	}
	return nil
}

// finish publishes the queued events and invokes the queued hooks in order. Every hook runs
// even if an earlier one failed.
func (s *session) finish() error {
	if s.ledger.eventBus != nil {
		for _, event := range s.events {
			s.ledger.eventBus.Publish(event)
		}
	}

	var errs []error
	for _, effect := range s.effects {
		if err := effect(); err != nil {
			logx.Error("LEDGER", fmt.Sprintf("Hook failed: %v", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
