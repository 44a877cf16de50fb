package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/warp-contracts/token-syncer/src/gateway/response"
	"github.com/warp-contracts/token-syncer/src/synchronizer"
	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/model"
	monitor_synchronizer "github.com/warp-contracts/token-syncer/src/utils/monitoring/synchronizer"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const jwtSecret = "test-secret"

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type ServerTestSuite struct {
	suite.Suite
	ctx     context.Context
	config  *config.Config
	db      *gorm.DB
	monitor *monitor_synchronizer.Monitor
	clock   *synchronizer.ManualClock
	sync    *synchronizer.Synchronizer
	server  *Server
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.config.Database.Driver = config.DatabaseDriverSqlite
	s.config.Database.Path = ":memory:"

	var err error
	s.db, err = model.NewConnection(s.ctx, s.config, "test")
	require.Nil(s.T(), err)

	ownership := synchronizer.NewOwnership(s.db)
	require.Nil(s.T(), ownership.EnsureOwner(s.ctx, "owner"))

	s.monitor = monitor_synchronizer.NewMonitor()
	s.clock = synchronizer.NewManualClock(1)
	s.sync = synchronizer.NewSynchronizer(s.config, s.db).
		WithGate(ownership).
		WithClock(s.clock).
		WithMonitor(s.monitor)

	s.server = NewServer(s.config).
		WithSynchronizer(s.sync).
		WithMonitor(s.monitor)
}

func (s *ServerTestSuite) TearDownTest() {
	s.sync.Close()
	db, err := s.db.DB()
	require.Nil(s.T(), err)
	require.Nil(s.T(), db.Close())
}

func (s *ServerTestSuite) do(method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.Nil(s.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(callerHeader, caller)
	}

	w := httptest.NewRecorder()
	s.server.Router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	require.Nil(s.T(), json.Unmarshal(w.Body.Bytes(), out))
}

func (s *ServerTestSuite) requireError(w *httptest.ResponseRecorder, status int, code synchronizer.Code) {
	require.Equal(s.T(), status, w.Code, w.Body.String())
	var out response.Error
	s.decode(w, &out)
	require.Equal(s.T(), string(code), out.Code)
}

func (s *ServerTestSuite) setupPair() {
	for _, id := range []string{"A", "B"} {
		w := s.do(http.MethodPost, "/v1/tokens", "owner", map[string]string{
			"token_id":         id,
			"contract_address": "contract-" + id,
		})
		require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodPut, "/v1/pairs", "owner", map[string]interface{}{
		"primary_token":   "A",
		"secondary_token": "B",
		"enabled":         true,
		"conversion_rate": 1500,
	})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
}

func (s *ServerTestSuite) TestTokens() {
	w := s.do(http.MethodPost, "/v1/tokens", "owner", map[string]string{
		"token_id":         "A",
		"contract_address": "contract-a",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var token model.TokenContract
	s.decode(w, &token)
	require.Equal(s.T(), "A", token.TokenId)
	require.True(s.T(), token.Active)

	w = s.do(http.MethodPost, "/v1/tokens", "owner", map[string]string{
		"token_id":         "A",
		"contract_address": "contract-a",
	})
	s.requireError(w, http.StatusConflict, synchronizer.CodeTokenAlreadyRegistered)

	w = s.do(http.MethodPut, "/v1/tokens/A/status", "owner", map[string]bool{"active": false})
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.decode(w, &token)
	require.False(s.T(), token.Active)

	w = s.do(http.MethodPut, "/v1/tokens/A/status", "owner", map[string]string{})
	s.requireError(w, http.StatusBadRequest, synchronizer.CodeInvalidInput)

	w = s.do(http.MethodGet, "/v1/tokens/missing", "", nil)
	require.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *ServerTestSuite) TestNotAuthorized() {
	w := s.do(http.MethodPost, "/v1/tokens", "mallory", map[string]string{
		"token_id":         "A",
		"contract_address": "contract-a",
	})
	s.requireError(w, http.StatusForbidden, synchronizer.CodeNotAuthorized)
}

func (s *ServerTestSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/v1/syncs", strings.NewReader("{"))
	req.Header.Set(callerHeader, "alice")
	w := httptest.NewRecorder()
	s.server.Router.ServeHTTP(w, req)
	s.requireError(w, http.StatusBadRequest, synchronizer.CodeInvalidInput)
}

func (s *ServerTestSuite) TestSyncLifecycle() {
	s.setupPair()

	w := s.do(http.MethodPost, "/v1/syncs", "alice", map[string]interface{}{
		"sync_id":         "s1",
		"primary_token":   "A",
		"secondary_token": "B",
		"amount":          10,
	})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	var op model.SyncOperation
	s.decode(w, &op)
	require.Equal(s.T(), model.SyncStatusPending, op.Status)

	w = s.do(http.MethodGet, "/v1/syncs", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var pending response.PendingSyncs
	s.decode(w, &pending)
	require.Len(s.T(), pending.Syncs, 1)

	w = s.do(http.MethodGet, "/v1/syncs/s1", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	// Anonymous callers only read
	w = s.do(http.MethodPost, "/v1/syncs/s1/execute", "", nil)
	s.requireError(w, http.StatusBadRequest, synchronizer.CodeInvalidInput)

	w = s.do(http.MethodPost, "/v1/syncs/s1/execute", "alice", nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var history model.SyncHistory
	s.decode(w, &history)
	require.Equal(s.T(), model.SyncStatusCompleted, history.Status)
	require.Equal(s.T(), int64(15), history.ConvertedAmount)

	w = s.do(http.MethodPost, "/v1/syncs/s1/execute", "alice", nil)
	s.requireError(w, http.StatusUnprocessableEntity, synchronizer.CodeSyncFailed)

	w = s.do(http.MethodGet, "/v1/syncs/s1", "", nil)
	require.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/v1/history/s1", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/history?token=B", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var byToken response.History
	s.decode(w, &byToken)
	require.Len(s.T(), byToken.History, 1)

	w = s.do(http.MethodGet, "/v1/history", "", nil)
	s.requireError(w, http.StatusBadRequest, synchronizer.CodeInvalidInput)
}

func (s *ServerTestSuite) TestCancelSync() {
	s.setupPair()

	w := s.do(http.MethodPost, "/v1/syncs", "alice", map[string]interface{}{
		"sync_id":         "s1",
		"primary_token":   "A",
		"secondary_token": "B",
		"amount":          10,
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/v1/syncs/s1/cancel", "mallory", nil)
	s.requireError(w, http.StatusForbidden, synchronizer.CodeNotAuthorized)

	w = s.do(http.MethodPost, "/v1/syncs/s1/cancel", "alice", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var history model.SyncHistory
	s.decode(w, &history)
	require.Equal(s.T(), model.SyncStatusCancelled, history.Status)
}

func (s *ServerTestSuite) TestPairs() {
	s.setupPair()

	w := s.do(http.MethodGet, "/v1/pairs/A/B", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var pair model.SyncPair
	s.decode(w, &pair)
	require.Equal(s.T(), int64(1500), pair.ConversionRate)

	w = s.do(http.MethodGet, "/v1/pairs/B/A", "", nil)
	require.Equal(s.T(), http.StatusNotFound, w.Code)

	// Every field has to be supplied
	w = s.do(http.MethodPut, "/v1/pairs", "owner", map[string]interface{}{
		"primary_token":   "A",
		"secondary_token": "B",
		"conversion_rate": 1500,
	})
	s.requireError(w, http.StatusBadRequest, synchronizer.CodeInvalidInput)

	w = s.do(http.MethodGet, "/v1/pairs/A/B", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.decode(w, &pair)
	require.True(s.T(), pair.Enabled)

	w = s.do(http.MethodPut, "/v1/pairs", "owner", map[string]interface{}{
		"primary_token":   "A",
		"secondary_token": "A",
		"enabled":         true,
		"conversion_rate": 1,
	})
	s.requireError(w, http.StatusBadRequest, synchronizer.CodeInvalidTokenPair)
}

func (s *ServerTestSuite) TestOperators() {
	w := s.do(http.MethodPost, "/v1/operators/bob", "owner", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/operators/bob", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var status response.OperatorStatus
	s.decode(w, &status)
	require.True(s.T(), status.IsOperator)

	w = s.do(http.MethodDelete, "/v1/operators/bob", "bob", nil)
	s.requireError(w, http.StatusForbidden, synchronizer.CodeNotAuthorized)

	w = s.do(http.MethodPut, "/v1/owner", "owner", map[string]string{"new_owner": "carol"})
	require.Equal(s.T(), http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/v1/operators/bob", "carol", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.decode(w, &status)
	require.False(s.T(), status.IsOperator)
}

func (s *ServerTestSuite) TestJwtCaller() {
	s.config.Gateway.JwtSecret = jwtSecret
	s.server = NewServer(s.config).
		WithSynchronizer(s.sync).
		WithMonitor(s.monitor)

	sign := func(subject, secret string) string {
		token := jwt.New()
		require.Nil(s.T(), token.Set(jwt.SubjectKey, subject))
		signed, err := jwt.Sign(token, jwa.HS256, []byte(secret))
		require.Nil(s.T(), err)
		return string(signed)
	}

	register := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/tokens",
			strings.NewReader(`{"token_id":"A","contract_address":"contract-a"}`))
		req.Header.Set("Content-Type", "application/json")
		// Ignored when tokens are required
		req.Header.Set(callerHeader, "owner")
		if authorization != "" {
			req.Header.Set("Authorization", "Bearer "+authorization)
		}
		w := httptest.NewRecorder()
		s.server.Router.ServeHTTP(w, req)
		return w
	}

	w := register("")
	s.requireError(w, http.StatusForbidden, synchronizer.CodeNotAuthorized)

	w = register(sign("owner", "other-secret"))
	require.Equal(s.T(), http.StatusUnauthorized, w.Code)
	require.Equal(s.T(), uint64(1), s.monitor.Report.Gateway.Errors.Unauthenticated.Load())

	w = register(sign("owner", jwtSecret))
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
}

func (s *ServerTestSuite) TestRateLimit() {
	s.config.Gateway.RateLimit = 0.001
	s.config.Gateway.RateBurst = 1
	s.server = NewServer(s.config).
		WithSynchronizer(s.sync).
		WithMonitor(s.monitor)

	w := s.do(http.MethodGet, "/v1/syncs", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/syncs", "", nil)
	require.Equal(s.T(), http.StatusTooManyRequests, w.Code)
	require.Equal(s.T(), uint64(1), s.monitor.Report.Gateway.Errors.RateLimited.Load())
}

func (s *ServerTestSuite) TestStreamHistory() {
	s.setupPair()

	httpServer := httptest.NewServer(s.server.Router)
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/v1/history/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.Nil(s.T(), err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(s.T(), func() bool {
		return s.monitor.Report.Gateway.State.StreamSubscribers.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)

	w := s.do(http.MethodPost, "/v1/syncs", "alice", map[string]interface{}{
		"sync_id":         "s1",
		"primary_token":   "A",
		"secondary_token": "B",
		"amount":          10,
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/v1/syncs/s1/cancel", "alice", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var history model.SyncHistory
	require.Nil(s.T(), wsjson.Read(ctx, conn, &history))
	require.Equal(s.T(), "s1", history.SyncId)
	require.Equal(s.T(), model.SyncStatusCancelled, history.Status)
}
