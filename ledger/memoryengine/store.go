package memoryengine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Store keeps parties, agreements and work units in memory.
type Store struct {
	mu         sync.RWMutex
	parties    map[core.PartyID]core.Party
	agreements map[core.AgreementID]core.Agreement
	workUnits  map[core.WorkUnitID]core.WorkUnit
	nextID     struct{ party, agreement, workUnit int64 }

	locks   *rowLocks
	clock   func() time.Time
	logger  ledger.Logger
	failure error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created/updated timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithLogger sets the logger for the Store.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		parties:    make(map[core.PartyID]core.Party),
		agreements: make(map[core.AgreementID]core.Agreement),
		workUnits:  make(map[core.WorkUnitID]core.WorkUnit),
		locks:      newRowLocks(),
		clock:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetFailure makes every subsequent operation fail like an unreachable database would.
// Passing nil restores normal operation.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *Store) checkFailure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failure != nil {
		return errors.Join(ledger.ErrQueryingFailed, s.failure)
	}

	return nil
}

// CreateParty stores a new party and assigns its id.
func (s *Store) CreateParty(_ context.Context, party core.Party) (core.Party, error) {
	if err := s.checkFailure(); err != nil {
		return core.Party{}, err
	}

	if err := ledger.ValidateParty(party); err != nil {
		return core.Party{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	party.ID = s.assignID(&s.nextID.party, party.ID)
	party.Balance = core.ToMoney(party.Balance)
	party.CreatedAt, party.UpdatedAt = s.stamps(party.CreatedAt)
	s.parties[party.ID] = party

	return party, nil
}

// CreateAgreement stores a new agreement between two existing parties.
func (s *Store) CreateAgreement(_ context.Context, agreement core.Agreement) (core.Agreement, error) {
	if err := s.checkFailure(); err != nil {
		return core.Agreement{}, err
	}

	if err := ledger.ValidateAgreement(agreement); err != nil {
		return core.Agreement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parties[agreement.PayerID]; !ok {
		return core.Agreement{}, ledger.ErrInvalidRecord
	}

	if _, ok := s.parties[agreement.PayeeID]; !ok {
		return core.Agreement{}, ledger.ErrInvalidRecord
	}

	agreement.ID = s.assignID(&s.nextID.agreement, agreement.ID)
	agreement.CreatedAt, agreement.UpdatedAt = s.stamps(agreement.CreatedAt)
	s.agreements[agreement.ID] = agreement

	return agreement, nil
}

// CreateWorkUnit stores a new work unit under an existing agreement.
func (s *Store) CreateWorkUnit(_ context.Context, workUnit core.WorkUnit) (core.WorkUnit, error) {
	if err := s.checkFailure(); err != nil {
		return core.WorkUnit{}, err
	}

	if err := ledger.ValidateWorkUnit(workUnit); err != nil {
		return core.WorkUnit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agreements[workUnit.AgreementID]; !ok {
		return core.WorkUnit{}, ledger.ErrInvalidRecord
	}

	workUnit.ID = s.assignID(&s.nextID.workUnit, workUnit.ID)
	workUnit.Price = core.ToMoney(workUnit.Price)
	workUnit.CreatedAt, workUnit.UpdatedAt = s.stamps(workUnit.CreatedAt)
	s.workUnits[workUnit.ID] = workUnit

	return workUnit, nil
}

// assignID keeps an explicitly requested id, otherwise hands out the next one.
func (s *Store) assignID(counter *int64, requested int64) int64 {
	if requested > 0 {
		if requested > *counter {
			*counter = requested
		}

		return requested
	}

	*counter++

	return *counter
}

func (s *Store) stamps(createdAt time.Time) (time.Time, time.Time) {
	now := core.ToTimestamp(s.clock())
	if createdAt.IsZero() {
		return now, now
	}

	created := core.ToTimestamp(createdAt)

	return created, created
}

// FindParty returns a party by id.
func (s *Store) FindParty(_ context.Context, partyID core.PartyID) (core.Party, error) {
	if err := s.checkFailure(); err != nil {
		return core.Party{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	party, ok := s.parties[partyID]
	if !ok {
		return core.Party{}, ledger.ErrRowNotFound
	}

	return party, nil
}

// ListAgreements returns the non-terminated agreements of a party.
func (s *Store) ListAgreements(_ context.Context, partyID core.PartyID) ([]core.Agreement, error) {
	if err := s.checkFailure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	agreements := make([]core.Agreement, 0)
	for _, agreement := range s.agreements {
		if agreement.Involves(partyID) && agreement.IsActive() {
			agreements = append(agreements, agreement)
		}
	}

	sort.Slice(agreements, func(i, j int) bool { return agreements[i].ID < agreements[j].ID })

	return agreements, nil
}

// FindAgreement returns an agreement with its work units if the party participates in it.
func (s *Store) FindAgreement(
	_ context.Context,
	agreementID core.AgreementID,
	partyID core.PartyID,
) (core.AgreementWithWorkUnits, error) {

	if err := s.checkFailure(); err != nil {
		return core.AgreementWithWorkUnits{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	agreement, ok := s.agreements[agreementID]
	if !ok || !agreement.Involves(partyID) {
		return core.AgreementWithWorkUnits{}, ledger.ErrRowNotFound
	}

	workUnits := make([]core.WorkUnit, 0)
	for _, workUnit := range s.workUnits {
		if workUnit.AgreementID == agreementID {
			workUnits = append(workUnits, workUnit)
		}
	}

	sortWorkUnits(workUnits)

	return core.AgreementWithWorkUnits{Agreement: agreement, WorkUnits: workUnits}, nil
}

// ListUnpaidWorkUnits returns unpaid work units under in_progress agreements of a party.
func (s *Store) ListUnpaidWorkUnits(_ context.Context, partyID core.PartyID) ([]core.WorkUnit, error) {
	if err := s.checkFailure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	workUnits := make([]core.WorkUnit, 0)
	for _, workUnit := range s.workUnits {
		agreement := s.agreements[workUnit.AgreementID]
		if agreement.Involves(partyID) && agreement.IsInProgress() && !workUnit.IsPaid() {
			workUnits = append(workUnits, workUnit)
		}
	}

	sortWorkUnits(workUnits)

	return workUnits, nil
}

// ProfessionEarnings sums work unit prices of in_progress agreements created within the window per payee profession.
func (s *Store) ProfessionEarnings(_ context.Context, window core.TimeWindow) ([]core.ProfessionEarnings, error) {
	if err := s.checkFailure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]core.Money)
	for _, workUnit := range s.workUnits {
		agreement := s.agreements[workUnit.AgreementID]
		if !agreement.IsInProgress() || !window.Contains(agreement.CreatedAt) {
			continue
		}

		profession := s.parties[agreement.PayeeID].Profession
		totals[profession] = totals[profession].Add(workUnit.Price)
	}

	earnings := make([]core.ProfessionEarnings, 0, len(totals))
	for profession, total := range totals {
		earnings = append(earnings, core.ProfessionEarnings{Profession: profession, Total: total})
	}

	return earnings, nil
}

// ClientPayments sums paid work unit prices created within the window per payer.
func (s *Store) ClientPayments(_ context.Context, window core.TimeWindow, limit int) ([]core.ClientTotal, error) {
	if err := s.checkFailure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[core.PartyID]core.Money)
	for _, workUnit := range s.workUnits {
		if !workUnit.IsPaid() || !window.Contains(workUnit.CreatedAt) {
			continue
		}

		payerID := s.agreements[workUnit.AgreementID].PayerID
		totals[payerID] = totals[payerID].Add(workUnit.Price)
	}

	clients := make([]core.ClientTotal, 0, len(totals))
	for payerID, total := range totals {
		payer := s.parties[payerID]
		clients = append(clients, core.ClientTotal{
			PartyID:   payerID,
			FirstName: payer.FirstName,
			LastName:  payer.LastName,
			TotalPaid: total,
		})
	}

	sort.Slice(clients, func(i, j int) bool {
		if !clients[i].TotalPaid.Equal(clients[j].TotalPaid) {
			return clients[i].TotalPaid.GreaterThan(clients[j].TotalPaid)
		}

		return clients[i].PartyID < clients[j].PartyID
	})

	if limit > 0 && len(clients) > limit {
		clients = clients[:limit]
	}

	return clients, nil
}

func sortWorkUnits(workUnits []core.WorkUnit) {
	sort.Slice(workUnits, func(i, j int) bool { return workUnits[i].ID < workUnits[j].ID })
}
