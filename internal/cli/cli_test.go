package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/live"
	"github.com/hustlex/admin-gateway/internal/session"
)

const (
	adminSecret  = "cli-test-secret"
	remittanceID = "9d4f5a7e-0c1b-4a55-8f5e-3f1c2b7d6e01"
	userID       = "5b0c7b52-3d3c-4c1e-9a8e-0a4f7f0e2b11"
	loginPayload = `{"access_token":"at-1","role":"super_admin","expires_at":"2030-01-02T03:04:05Z","user":{"id":"` + userID + `","email":"ops@hustlex.ng"}}`
)

type fakes struct {
	app        *App
	store      *session.FileStore
	authCalls  atomic.Int32
	graphCalls atomic.Int32

	// unauthorized makes the fake graph service answer 401.
	unauthorized atomic.Bool

	mu        sync.Mutex
	responses map[string]string
	lastReq   graph.Request
}

func newFakes(t *testing.T) *fakes {
	t.Helper()
	f := &fakes{responses: map[string]string{}}

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		assert.Equal(t, auth.LoginEndpoint, r.URL.Path)
		var creds auth.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "ops@hustlex.ng" || creds.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(loginPayload))
	}))
	t.Cleanup(authSrv.Close)

	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.graphCalls.Add(1)
		assert.Equal(t, adminSecret, r.Header.Get(graph.HeaderAdminSecret))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		if f.unauthorized.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req graph.Request
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.lastReq = req
		body := f.responses[req.OperationName]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(graphSrv.Close)

	httpClient := downstream.NewClient(downstream.DefaultClientConfig())
	f.store = session.NewFileStore(t.TempDir(), session.DefaultKey)
	f.app = &App{
		Gateway: auth.NewGateway(httpClient, authSrv.URL, nil),
		Data:    graph.NewClient(httpClient, graphSrv.URL+"/v1/graphql", graph.AdminSecret(adminSecret)),
		Live:    live.Unsupported{URL: "ws://unused"},
		Store:   f.store,
	}
	return f
}

func (f *fakes) respond(op, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[op] = body
}

func (f *fakes) last() graph.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func (f *fakes) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(f.app)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (f *fakes) login(t *testing.T) {
	t.Helper()
	out, err := f.exec(t, "login", "--email", " ops@hustlex.ng ", "--password", "correct-horse")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as ops@hustlex.ng (super_admin)")
}

func TestLogin_SessionLifecycle(t *testing.T) {
	f := newFakes(t)
	f.login(t)

	raw, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, loginPayload, string(raw), "payload is stored verbatim")

	out, err := f.exec(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Authenticated")

	out, err = f.exec(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role:     super_admin")
	assert.Contains(t, out, `"email":"ops@hustlex.ng"`)
	assert.Contains(t, out, "expires:  2030-01-02T03:04:05Z (valid)")

	out, err = f.exec(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = os.Stat(f.store.Path())
	assert.True(t, os.IsNotExist(err))

	_, err = f.exec(t, "check")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = f.exec(t, "whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLogin_InvalidPassword(t *testing.T) {
	f := newFakes(t)

	_, err := f.exec(t, "login", "--email", "ops@hustlex.ng", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")

	_, statErr := os.Stat(f.store.Path())
	assert.True(t, os.IsNotExist(statErr), "no session on failure")
}

func TestLogin_ValidatesBeforeCallingAuth(t *testing.T) {
	f := newFakes(t)
	t.Setenv("HXADMIN_PASSWORD", "")

	_, err := f.exec(t, "login", "--email", "not-an-email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password is required")
	assert.Zero(t, f.authCalls.Load())
}

func TestLogin_PasswordFromEnv(t *testing.T) {
	f := newFakes(t)
	t.Setenv("HXADMIN_PASSWORD", "correct-horse")

	_, err := f.exec(t, "login", "--email", "ops@hustlex.ng")
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.authCalls.Load())
}

func TestList_RequiresLogin(t *testing.T) {
	f := newFakes(t)

	_, err := f.exec(t, "list", "users")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Zero(t, f.graphCalls.Load())
}

func TestList_Remittances(t *testing.T) {
	f := newFakes(t)
	f.login(t)
	f.respond("List", `{"data":{
		"remittances":[{"id":"`+remittanceID+`","reference":"RM-1","status":"in_transit","source_amount":1500.5,"source_currency":"GBP","beneficiary":{"first_name":"Ada","last_name":"Obi"}}],
		"remittances_aggregate":{"aggregate":{"count":12}}}}`)

	out, err := f.exec(t, "list", "remittances", "--filter", "status[in]=pending,in_transit", "--sort=-created_at", "--limit", "5")
	require.NoError(t, err)

	assert.Contains(t, out, remittanceID)
	assert.Contains(t, out, "RM-1 to Ada Obi")
	assert.Contains(t, out, "IN TRANSIT")
	assert.Contains(t, out, "GBP 1,500.5")
	assert.Contains(t, out, "1 of 12 remittances")

	vars := f.last().Variables
	assert.EqualValues(t, 5, vars["limit"])
	assert.Equal(t, map[string]any{"status": map[string]any{"_in": []any{"pending", "in_transit"}}}, vars["where"])
	assert.Equal(t, []any{map[string]any{"created_at": "desc"}}, vars["order_by"])
}

func TestList_BadFilter(t *testing.T) {
	f := newFakes(t)
	f.login(t)

	_, err := f.exec(t, "list", "users", "--filter", "status")
	assert.Error(t, err)
	_, err = f.exec(t, "list", "users", "--filter", "status[regex]=x")
	assert.ErrorIs(t, err, graph.ErrInvalidFilter)
	assert.Zero(t, f.graphCalls.Load())
}

func TestShow_RemittanceProgress(t *testing.T) {
	f := newFakes(t)
	f.login(t)
	f.respond("Get", `{"data":{"remittances_by_pk":{"id":"`+remittanceID+`","reference":"RM-1","status":"in_transit","source_amount":200,"source_currency":"USD","created_at":"2024-06-01T08:30:00+00:00","estimated_delivery":null}}}`)

	out, err := f.exec(t, "show", "remittances", remittanceID)
	require.NoError(t, err)
	assert.Contains(t, out, "Remittances / "+remittanceID)
	assert.Contains(t, out, "status:   IN TRANSIT")
	assert.Contains(t, out, "amount:   USD 200")
	assert.Contains(t, out, "progress: step 5 of 7 (in_transit)")
	assert.Regexp(t, `created_at +01 Jun 2024 08:30\n`, out)
	assert.Regexp(t, `estimated_delivery +-\n`, out)
	assert.Equal(t, remittanceID, f.last().Variables["id"])
}

func TestShow_NotFound(t *testing.T) {
	f := newFakes(t)
	f.login(t)
	f.respond("Get", `{"data":{"users_by_pk":null}}`)

	_, err := f.exec(t, "show", "users", userID)
	assert.ErrorIs(t, err, downstream.ErrNotFound)
}

func TestShow_UnsupportedCapability(t *testing.T) {
	f := newFakes(t)
	f.login(t)

	_, err := f.exec(t, "show", "notifications", userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support show")

	_, err = f.exec(t, "show", "wallets", userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}

func TestUpdate_ValidatesAndSends(t *testing.T) {
	f := newFakes(t)
	f.login(t)
	f.respond("Update", `{"data":{"update_services_by_pk":{"id":"`+userID+`","title":"Deep clean","status":"paused","base_price":15000,"currency":"NGN"}}}`)

	_, err := f.exec(t, "update", "services", userID, "status=bogus")
	require.Error(t, err)
	assert.Zero(t, f.graphCalls.Load())

	out, err := f.exec(t, "update", "services", userID, "status=paused", "base_price=15000")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated services "+userID)
	assert.Contains(t, out, "NGN 15,000")

	vars := f.last().Variables
	assert.Equal(t, userID, vars["id"])
	assert.Equal(t, map[string]any{"status": "paused", "base_price": float64(15000)}, vars["set"])
}

func TestUnauthorizedGraphLogsOut(t *testing.T) {
	f := newFakes(t)
	f.login(t)
	f.unauthorized.Store(true)

	_, err := f.exec(t, "list", "users")
	assert.ErrorIs(t, err, ErrLoggedOut)

	_, statErr := os.Stat(f.store.Path())
	assert.True(t, os.IsNotExist(statErr), "session cleared after 401")
}

func TestSubscribe_NotImplemented(t *testing.T) {
	f := newFakes(t)
	f.login(t)

	_, err := f.exec(t, "subscribe", "remittances")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available yet")
}

func TestResources_ListsCapabilities(t *testing.T) {
	f := newFakes(t)

	out, err := f.exec(t, "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "savings_circles")
	assert.Contains(t, out, "list,show,edit")
}
