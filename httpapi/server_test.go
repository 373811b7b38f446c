package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/demodata"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/depositfunds"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/paywork"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestclients"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestprofession"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/getagreement"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/listagreements"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/unpaidworkunits"
	"github.com/AntonStoeckl/agreement-ledger-go/httpapi"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/memoryengine"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
)

type body struct {
	OK        bool                `json:"ok"`
	ErrorKind string              `json:"errorKind"`
	Data      jsoniter.RawMessage `json:"data"`
	Message   string              `json:"message"`
}

func givenServer(t *testing.T, opts ...httpapi.Option) (http.Handler, *memoryengine.Store) {
	t.Helper()

	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memoryengine.NewStore(memoryengine.WithClock(func() time.Time { return createdAt }))
	_, err := demodata.Load(context.Background(), store)
	require.NoError(t, err)

	retry := shell.WithBaseDelay(time.Millisecond)
	server := httpapi.NewServer(store, httpapi.Handlers{
		PayWork:         paywork.NewCommandHandler(store, paywork.WithRetryOptions(retry)),
		DepositFunds:    depositfunds.NewCommandHandler(store, depositfunds.WithRetryOptions(retry)),
		BestProfession:  bestprofession.NewQueryHandler(store),
		BestClients:     bestclients.NewQueryHandler(store),
		ListAgreements:  listagreements.NewQueryHandler(store),
		GetAgreement:    getagreement.NewQueryHandler(store),
		UnpaidWorkUnits: unpaidworkunits.NewQueryHandler(store),
	}, opts...)

	return server.Router(), store
}

func call(t *testing.T, handler http.Handler, method, path string, profileID int64, payload string) (int, body) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(payload))
	if profileID != 0 {
		request.Header.Set(httpapi.ProfileHeader, strconv.FormatInt(profileID, 10))
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var decoded body
	require.NoError(t, jsoniter.Unmarshal(recorder.Body.Bytes(), &decoded))

	return recorder.Code, decoded
}

func decodeData(t *testing.T, raw jsoniter.RawMessage, target any) {
	t.Helper()
	require.NoError(t, jsoniter.Unmarshal(raw, target))
}

func Test_Server_RejectsUnknownCallers(t *testing.T) {
	handler, _ := givenServer(t)

	for _, profileID := range []int64{0, 999} {
		status, response := call(t, handler, http.MethodGet, "/api/v1/contracts", profileID, "")

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, response.OK)
		assert.Equal(t, "Unauthorized", response.ErrorKind)
	}
}

func Test_Server_GetAgreement_IsVisibleToParticipantsOnly(t *testing.T) {
	// arrange
	handler, _ := givenServer(t)

	// act
	status, response := call(t, handler, http.MethodGet, "/api/v1/contracts/2", 1, "")
	otherStatus, otherResponse := call(t, handler, http.MethodGet, "/api/v1/contracts/2", 2, "")

	// assert
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, response.OK)

	var details getagreement.AgreementDetails
	decodeData(t, response.Data, &details)
	assert.Equal(t, core.AgreementID(2), details.ID)
	assert.Len(t, details.WorkUnits, 3)

	assert.Equal(t, http.StatusNotFound, otherStatus)
	assert.Equal(t, "NotFound", otherResponse.ErrorKind)
}

func Test_Server_ListAgreements_ReturnsActiveAgreements(t *testing.T) {
	handler, _ := givenServer(t)

	status, response := call(t, handler, http.MethodGet, "/api/v1/contracts", 1, "")

	require.Equal(t, http.StatusOK, status)
	var agreements listagreements.Agreements
	decodeData(t, response.Data, &agreements)
	assert.Equal(t, 1, agreements.Count, "the terminated agreement is hidden")
}

func Test_Server_PayWork_SettlesOnce(t *testing.T) {
	// arrange
	handler, _ := givenServer(t)

	// act
	status, response := call(t, handler, http.MethodPost, "/api/v1/jobs/2/pay", 1, "")
	secondStatus, secondResponse := call(t, handler, http.MethodPost, "/api/v1/jobs/2/pay", 1, "")
	_, unpaid := call(t, handler, http.MethodGet, "/api/v1/jobs/unpaid", 1, "")

	// assert
	require.Equal(t, http.StatusOK, status)

	var receipt struct {
		Kind    string `json:"kind"`
		Balance string `json:"balance"`
		Amount  string `json:"amount"`
	}
	decodeData(t, response.Data, &receipt)
	assert.Equal(t, "payment", receipt.Kind)
	assert.True(t, core.MustParseMoney("949").Equal(core.MustParseMoney(receipt.Balance)))
	assert.True(t, core.MustParseMoney("201").Equal(core.MustParseMoney(receipt.Amount)))

	assert.Equal(t, http.StatusBadRequest, secondStatus)
	assert.Equal(t, "AlreadyPaid", secondResponse.ErrorKind)

	var remaining unpaidworkunits.UnpaidWorkUnits
	decodeData(t, unpaid.Data, &remaining)
	assert.Equal(t, 0, remaining.Count)
}

func Test_Server_PayWork_MapsRejections(t *testing.T) {
	testCases := []struct {
		name           string
		path           string
		profileID      int64
		expectedStatus int
		expectedKind   string
	}{
		{name: "payee cannot pay", path: "/api/v1/jobs/2/pay", profileID: 6, expectedStatus: http.StatusForbidden, expectedKind: "Forbidden"},
		{name: "unknown work unit", path: "/api/v1/jobs/999/pay", profileID: 1, expectedStatus: http.StatusNotFound, expectedKind: "NotFound"},
		{name: "insufficient funds", path: "/api/v1/jobs/5/pay", profileID: 4, expectedStatus: http.StatusBadRequest, expectedKind: "InsufficientFunds"},
		{name: "malformed id", path: "/api/v1/jobs/abc/pay", profileID: 1, expectedStatus: http.StatusBadRequest, expectedKind: "InvalidArgument"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _ := givenServer(t)

			status, response := call(t, handler, http.MethodPost, tc.path, tc.profileID, "")

			assert.Equal(t, tc.expectedStatus, status)
			assert.Equal(t, tc.expectedKind, response.ErrorKind)
		})
	}
}

func Test_Server_DepositFunds(t *testing.T) {
	testCases := []struct {
		name           string
		profileID      int64
		payload        string
		expectedStatus int
		expectedKind   string
	}{
		{name: "number amount", profileID: 1, payload: `{"amount": 50}`, expectedStatus: http.StatusOK},
		{name: "string amount", profileID: 1, payload: `{"amount": "100.25"}`, expectedStatus: http.StatusOK},
		{name: "above ceiling", profileID: 1, payload: `{"amount": "100.26"}`, expectedStatus: http.StatusBadRequest, expectedKind: "LimitExceeded"},
		{name: "sub-cent amount", profileID: 1, payload: `{"amount": 0.001}`, expectedStatus: http.StatusBadRequest, expectedKind: "InvalidAmount"},
		{name: "missing amount", profileID: 1, payload: `{}`, expectedStatus: http.StatusBadRequest, expectedKind: "InvalidAmount"},
		{name: "contractor caller", profileID: 6, payload: `{"amount": 10}`, expectedStatus: http.StatusForbidden, expectedKind: "Forbidden"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _ := givenServer(t)
			path := "/api/v1/balances/deposit/" + strconv.FormatInt(tc.profileID, 10)

			status, response := call(t, handler, http.MethodPost, path, tc.profileID, tc.payload)

			assert.Equal(t, tc.expectedStatus, status)
			assert.Equal(t, tc.expectedKind, response.ErrorKind)
		})
	}
}

func Test_Server_BestProfession(t *testing.T) {
	// arrange
	handler, _ := givenServer(t)

	// act
	status, response := call(t, handler, http.MethodGet, "/api/v1/admin/best-profession?start=2024-01-01&end=2024-12-31", 0, "")

	// assert
	require.Equal(t, http.StatusOK, status)

	var best struct {
		Found       bool   `json:"found"`
		Profession  string `json:"profession"`
		TotalEarned string `json:"totalEarned"`
	}
	decodeData(t, response.Data, &best)
	assert.True(t, best.Found)
	assert.Equal(t, "Programmer", best.Profession)
	assert.True(t, core.MustParseMoney("3486").Equal(core.MustParseMoney(best.TotalEarned)))
}

func Test_Server_BestClients(t *testing.T) {
	// arrange
	handler, _ := givenServer(t)

	// act
	status, response := call(t, handler, http.MethodGet, "/api/v1/admin/best-clients?start=2020-08-01&end=2020-08-31", 0, "")

	// assert
	require.Equal(t, http.StatusOK, status)

	var best struct {
		Clients []struct {
			ID        int64  `json:"id"`
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			TotalPaid string `json:"totalPaid"`
		} `json:"clients"`
		Count int `json:"count"`
	}
	decodeData(t, response.Data, &best)
	require.Equal(t, 2, best.Count)
	assert.Equal(t, int64(4), best.Clients[0].ID)
	assert.Equal(t, "Ash", best.Clients[0].FirstName)
	assert.Equal(t, "Kethcum", best.Clients[0].LastName)
	assert.True(t, core.MustParseMoney("2020").Equal(core.MustParseMoney(best.Clients[0].TotalPaid)))
	assert.Equal(t, int64(1), best.Clients[1].ID)
	assert.Equal(t, "Harry", best.Clients[1].FirstName)
	assert.Equal(t, "Potter", best.Clients[1].LastName)
}

func Test_Server_Reports_RejectInvalidArguments(t *testing.T) {
	handler, _ := givenServer(t)

	for _, path := range []string{
		"/api/v1/admin/best-profession?end=2024-12-31",
		"/api/v1/admin/best-profession?start=2024-12-31&end=2024-01-01",
		"/api/v1/admin/best-clients?start=2020-08-01&end=2020-08-31&limit=abc",
		"/api/v1/admin/best-clients?start=2020-08-01&end=2020-08-31&limit=0",
		"/api/v1/admin/best-clients?start=yesterday&end=2020-08-31",
	} {
		status, response := call(t, handler, http.MethodGet, path, 0, "")

		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, "InvalidArgument", response.ErrorKind, path)
	}
}

func Test_Server_HidesStoreFailures(t *testing.T) {
	// arrange
	handler, store := givenServer(t)
	store.SetFailure(assert.AnError)

	// act
	status, response := call(t, handler, http.MethodGet, "/api/v1/contracts", 1, "")

	// assert
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "StoreUnavailable", response.ErrorKind)
	assert.Equal(t, "internal error", response.Message)
}

func Test_Server_RateLimit(t *testing.T) {
	handler, _ := givenServer(t, httpapi.WithRateLimit(0.001, 1))

	firstStatus, _ := call(t, handler, http.MethodGet, "/healthz", 0, "")
	secondStatus, response := call(t, handler, http.MethodGet, "/healthz", 0, "")

	assert.Equal(t, http.StatusOK, firstStatus)
	assert.Equal(t, http.StatusTooManyRequests, secondStatus)
	assert.Equal(t, "RateLimited", response.ErrorKind)
}

func Test_StatusCode_MapsEveryErrorKind(t *testing.T) {
	expected := map[shell.ErrorKind]int{
		shell.ErrorKindNone:                   http.StatusOK,
		shell.ErrorKindNotFound:               http.StatusNotFound,
		shell.ErrorKindForbidden:              http.StatusForbidden,
		shell.ErrorKindUnauthorized:           http.StatusUnauthorized,
		shell.ErrorKindInvalidAmount:          http.StatusBadRequest,
		shell.ErrorKindAlreadyPaid:            http.StatusBadRequest,
		shell.ErrorKindInsufficientFunds:      http.StatusBadRequest,
		shell.ErrorKindLimitExceeded:          http.StatusBadRequest,
		shell.ErrorKindInvalidArgument:        http.StatusBadRequest,
		shell.ErrorKindConflictRetryExhausted: http.StatusConflict,
		shell.ErrorKindStoreUnavailable:       http.StatusInternalServerError,
	}

	for kind, status := range expected {
		assert.Equal(t, status, httpapi.StatusCode(kind), string(kind))
	}
}
