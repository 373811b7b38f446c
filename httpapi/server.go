package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/depositfunds"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/paywork"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestclients"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestprofession"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/getagreement"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/listagreements"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/unpaidworkunits"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
)

// IdentityResolver looks up the calling party.
type IdentityResolver interface {
	FindParty(ctx context.Context, partyID core.PartyID) (core.Party, error)
}

// Handlers bundles the command and query handlers served over HTTP.
type Handlers struct {
	PayWork         shell.CommandHandler[paywork.Command]
	DepositFunds    shell.CommandHandler[depositfunds.Command]
	BestProfession  shell.QueryHandler[bestprofession.Query, bestprofession.BestProfession]
	BestClients     shell.QueryHandler[bestclients.Query, bestclients.BestClients]
	ListAgreements  shell.QueryHandler[listagreements.Query, listagreements.Agreements]
	GetAgreement    shell.QueryHandler[getagreement.Query, getagreement.AgreementDetails]
	UnpaidWorkUnits shell.QueryHandler[unpaidworkunits.Query, unpaidworkunits.UnpaidWorkUnits]
}

// Server routes HTTP requests to the handlers.
type Server struct {
	identity IdentityResolver
	handlers Handlers
	limiter  *rate.Limiter
	metrics  http.Handler
	logger   ledger.Logger
	clock    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits the request rate of the whole server. A zero limit disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithMetricsHandler exposes the given handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the clock that stamps commands.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// NewServer creates a Server.
func NewServer(identity IdentityResolver, handlers Handlers, opts ...Option) *Server {
	s := &Server{
		identity: identity,
		handlers: handlers,
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the chi router with all routes under /api/v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if s.limiter != nil {
		r.Use(s.rateLimit)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, response{OK: true})
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Get("/best-profession", s.bestProfession)
			r.Get("/best-clients", s.bestClients)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.resolveCaller)

			r.Get("/contracts", s.listAgreements)
			r.Get("/contracts/{id}", s.getAgreement)
			r.Get("/jobs/unpaid", s.unpaidWorkUnits)
			r.Post("/jobs/{jobID}/pay", s.payWork)
			r.Post("/balances/deposit/{userID}", s.depositFunds)
		})
	})

	return r
}
