package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/depositfunds"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/paywork"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestclients"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestprofession"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/getagreement"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/listagreements"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/unpaidworkunits"
)

const dateLayout = "2006-01-02"

var numberDecoder = jsoniter.Config{UseNumber: true}.Froze()

type receiptView struct {
	ID             uuid.UUID        `json:"id"`
	Kind           core.ReceiptKind `json:"kind"`
	PartyID        core.PartyID     `json:"partyId"`
	CounterpartyID core.PartyID     `json:"counterpartyId,omitempty"`
	WorkUnitID     core.WorkUnitID  `json:"workUnitId,omitempty"`
	Amount         core.Money       `json:"amount"`
	Balance        core.Money       `json:"balance"`
	IssuedAt       time.Time        `json:"issuedAt"`
}

func toReceiptView(receipt core.Receipt) receiptView {
	return receiptView(receipt)
}

func (s *Server) listAgreements(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	result, err := s.handlers.ListAgreements.Handle(r.Context(), listagreements.BuildQuery(caller.ID))
	s.writeOutcome(w, r, result, err)
}

func (s *Server) getAgreement(w http.ResponseWriter, r *http.Request) {
	agreementID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	caller := callerFrom(r.Context())
	result, err := s.handlers.GetAgreement.Handle(r.Context(), getagreement.BuildQuery(agreementID, caller.ID))
	s.writeOutcome(w, r, result, err)
}

func (s *Server) unpaidWorkUnits(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	result, err := s.handlers.UnpaidWorkUnits.Handle(r.Context(), unpaidworkunits.BuildQuery(caller.ID))
	s.writeOutcome(w, r, result, err)
}

func (s *Server) payWork(w http.ResponseWriter, r *http.Request) {
	workUnitID, err := pathID(r, "jobID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	caller := callerFrom(r.Context())
	result, err := s.handlers.PayWork.Handle(r.Context(), paywork.BuildCommand(workUnitID, caller.ID, s.clock()))
	s.writeOutcome(w, r, toReceiptView(result.Receipt), err)
}

func (s *Server) depositFunds(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	amount, err := decodeAmount(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	caller := callerFrom(r.Context())
	command := depositfunds.BuildCommand(targetID, caller.ID, caller.Type, amount, s.clock())
	result, err := s.handlers.DepositFunds.Handle(r.Context(), command)
	s.writeOutcome(w, r, toReceiptView(result.Receipt), err)
}

func (s *Server) bestProfession(w http.ResponseWriter, r *http.Request) {
	start, end, err := window(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	query, err := bestprofession.BuildQuery(start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.handlers.BestProfession.Handle(r.Context(), query)
	s.writeOutcome(w, r, result, err)
}

func (s *Server) bestClients(w http.ResponseWriter, r *http.Request) {
	start, end, err := window(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	limit := bestclients.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, r, core.ErrInvalidArgument)
			return
		}
	}

	query, err := bestclients.BuildQuery(start, end, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.handlers.BestClients.Handle(r.Context(), query)
	s.writeOutcome(w, r, result, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidArgument
	}

	return id, nil
}

// decodeAmount accepts the amount as a JSON number or a decimal string.
func decodeAmount(r *http.Request) (core.Money, error) {
	var body struct {
		Amount any `json:"amount"`
	}

	if err := numberDecoder.NewDecoder(r.Body).Decode(&body); err != nil {
		return core.Money{}, core.ErrInvalidAmount
	}

	if number, ok := jsoniter.CastJsonNumber(body.Amount); ok {
		return core.ParseMoney(number)
	}

	if text, ok := body.Amount.(string); ok {
		return core.ParseMoney(strings.TrimSpace(text))
	}

	return core.Money{}, core.ErrInvalidAmount
}

func window(r *http.Request) (time.Time, time.Time, error) {
	return ParseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
}

// ParseWindow reads start and end as RFC 3339 timestamps or dates. A date as end covers the whole day.
// Missing or malformed values yield core.ErrInvalidArgument.
func ParseWindow(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := parseTime(rawStart, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := parseTime(rawEnd, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

func parseTime(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, core.ErrInvalidArgument
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}

	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, core.ErrInvalidArgument
	}

	if endOfDay {
		return day.Add(24*time.Hour - time.Microsecond), nil
	}

	return day, nil
}
