package memoryengine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

const (
	logMsgTxCommitted     = "memoryengine: transaction committed"
	logMsgTxRolledBack    = "memoryengine: transaction rolled back"
	logMsgConflict        = "memoryengine: concurrency conflict detected"
	logAttrError          = "error"
	logAttrBalanceUpdates = "balance_updates"
	logAttrPaidMarks      = "paid_marks"
)

// rowLock is a mutex that can be abandoned when the context ends.
type rowLock chan struct{}

type rowLocks struct {
	mu    sync.Mutex
	locks map[string]rowLock
}

func newRowLocks() *rowLocks {
	return &rowLocks{locks: make(map[string]rowLock)}
}

func (r *rowLocks) acquire(ctx context.Context, key string) error {
	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = make(rowLock, 1)
		r.locks[key] = lock
	}
	r.mu.Unlock()

	select {
	case lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *rowLocks) release(key string) {
	r.mu.Lock()
	lock := r.locks[key]
	r.mu.Unlock()

	<-lock
}

func workUnitKey(id core.WorkUnitID) string { return fmt.Sprintf("work_unit:%d", id) }
func partyKey(id core.PartyID) string       { return fmt.Sprintf("party:%d", id) }

// tx buffers writes until commit. It is not safe for concurrent use.
type tx struct {
	store         *Store
	held          []string
	partiesLocked bool
	balances      map[core.PartyID]core.Money
	paidAt        map[core.WorkUnitID]time.Time
}

// WithinTx runs fn with row locks and applies its buffered writes only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn ledger.TxFunc) error {
	if err := s.checkFailure(); err != nil {
		return err
	}

	t := &tx{
		store:    s,
		balances: make(map[core.PartyID]core.Money),
		paidAt:   make(map[core.WorkUnitID]time.Time),
	}
	defer t.releaseAll()

	if err := fn(ctx, t); err != nil {
		if s.logger != nil {
			s.logger.Debug(logMsgTxRolledBack, logAttrError, err.Error())
		}

		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	t.commit()

	return nil
}

func (t *tx) commit() {
	s := t.store
	now := core.ToTimestamp(s.clock())

	s.mu.Lock()
	defer s.mu.Unlock()

	for partyID, balance := range t.balances {
		party := s.parties[partyID]
		party.Balance = balance
		party.UpdatedAt = now
		s.parties[partyID] = party
	}

	for workUnitID, paidAt := range t.paidAt {
		workUnit := s.workUnits[workUnitID]
		at := paidAt
		workUnit.Paid = core.Paid
		workUnit.PaymentDate = &at
		workUnit.UpdatedAt = now
		s.workUnits[workUnitID] = workUnit
	}

	if s.logger != nil {
		s.logger.Debug(logMsgTxCommitted, logAttrBalanceUpdates, len(t.balances), logAttrPaidMarks, len(t.paidAt))
	}
}

func (t *tx) releaseAll() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.store.locks.release(t.held[i])
	}

	t.held = nil
}

func (t *tx) lock(ctx context.Context, key string) error {
	for _, held := range t.held {
		if held == key {
			return nil
		}
	}

	if err := t.store.locks.acquire(ctx, key); err != nil {
		return err
	}

	t.held = append(t.held, key)

	return nil
}

// LockWorkUnit locks the work unit and returns it with its agreement.
func (t *tx) LockWorkUnit(ctx context.Context, workUnitID core.WorkUnitID) (core.WorkUnit, core.Agreement, error) {
	s := t.store

	s.mu.RLock()
	_, ok := s.workUnits[workUnitID]
	s.mu.RUnlock()

	if !ok {
		return core.WorkUnit{}, core.Agreement{}, ledger.ErrRowNotFound
	}

	if err := t.lock(ctx, workUnitKey(workUnitID)); err != nil {
		return core.WorkUnit{}, core.Agreement{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	workUnit := s.workUnits[workUnitID]
	if paidAt, ok := t.paidAt[workUnitID]; ok {
		workUnit.Paid = core.Paid
		workUnit.PaymentDate = &paidAt
	}

	return workUnit, s.agreements[workUnit.AgreementID], nil
}

// LockParties locks the existing parties in ascending id order.
func (t *tx) LockParties(ctx context.Context, partyIDs ...core.PartyID) (map[core.PartyID]core.Party, error) {
	if t.partiesLocked {
		return nil, fmt.Errorf("memoryengine: parties already locked in this transaction")
	}
	t.partiesLocked = true

	ids := uniqueSorted(partyIDs)
	s := t.store

	for _, id := range ids {
		s.mu.RLock()
		_, ok := s.parties[id]
		s.mu.RUnlock()

		if !ok {
			continue
		}

		if err := t.lock(ctx, partyKey(id)); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	parties := make(map[core.PartyID]core.Party, len(ids))
	for _, id := range ids {
		if party, ok := s.parties[id]; ok {
			if balance, pending := t.balances[id]; pending {
				party.Balance = balance
			}
			parties[id] = party
		}
	}

	return parties, nil
}

// UnpaidLiability sums unpaid work units under all agreements where the party pays.
func (t *tx) UnpaidLiability(_ context.Context, payerID core.PartyID) (core.Money, error) {
	s := t.store

	s.mu.RLock()
	defer s.mu.RUnlock()

	liability := decimal.Zero
	for _, workUnit := range s.workUnits {
		if workUnit.IsPaid() {
			continue
		}

		if _, markedInTx := t.paidAt[workUnit.ID]; markedInTx {
			continue
		}

		if s.agreements[workUnit.AgreementID].PayerID == payerID {
			liability = liability.Add(workUnit.Price)
		}
	}

	return liability, nil
}

// UpdateBalance buffers a balance change if the current balance still equals expected.
func (t *tx) UpdateBalance(_ context.Context, partyID core.PartyID, expected, next core.Money) error {
	if !t.holds(partyKey(partyID)) {
		return fmt.Errorf("memoryengine: party %d is not locked", partyID)
	}

	current, ok := t.balances[partyID]
	if !ok {
		s := t.store
		s.mu.RLock()
		party, exists := s.parties[partyID]
		s.mu.RUnlock()

		if !exists {
			return ledger.ErrConcurrencyConflict
		}

		current = party.Balance
	}

	if !current.Equal(expected) || next.IsNegative() {
		t.logConflict()
		return ledger.ErrConcurrencyConflict
	}

	t.balances[partyID] = core.ToMoney(next)

	return nil
}

// MarkWorkUnitPaid buffers the unpaid to paid transition.
func (t *tx) MarkWorkUnitPaid(_ context.Context, workUnitID core.WorkUnitID, paidAt time.Time) error {
	if !t.holds(workUnitKey(workUnitID)) {
		return fmt.Errorf("memoryengine: work unit %d is not locked", workUnitID)
	}

	s := t.store
	s.mu.RLock()
	workUnit := s.workUnits[workUnitID]
	s.mu.RUnlock()

	if _, marked := t.paidAt[workUnitID]; marked || workUnit.IsPaid() {
		t.logConflict()
		return ledger.ErrConcurrencyConflict
	}

	t.paidAt[workUnitID] = core.ToTimestamp(paidAt)

	return nil
}

func (t *tx) holds(key string) bool {
	for _, held := range t.held {
		if held == key {
			return true
		}
	}

	return false
}

func (t *tx) logConflict() {
	if t.store.logger != nil {
		t.store.logger.Info(logMsgConflict)
	}
}

func uniqueSorted(ids []core.PartyID) []core.PartyID {
	seen := make(map[core.PartyID]struct{}, len(ids))
	unique := make([]core.PartyID, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	return unique
}
