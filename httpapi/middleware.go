package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// ProfileHeader carries the id of the calling party.
const ProfileHeader = "profile_id"

type callerKey struct{}

// resolveCaller rejects requests whose profile_id does not name an existing party.
func (s *Server) resolveCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partyID, err := strconv.ParseInt(r.Header.Get(ProfileHeader), 10, 64)
		if err != nil || partyID <= 0 {
			s.writeError(w, r, core.ErrUnknownCaller)
			return
		}

		party, err := s.identity.FindParty(r.Context(), partyID)
		if errors.Is(err, ledger.ErrRowNotFound) {
			s.writeError(w, r, core.ErrUnknownCaller)
			return
		}

		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, party)))
	})
}

func callerFrom(ctx context.Context) core.Party {
	party, _ := ctx.Value(callerKey{}).(core.Party)

	return party
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, response{ErrorKind: errorKindRateLimited, Message: "too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
