package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rosterhq/rosterd/internal/model"
	"github.com/rosterhq/rosterd/internal/service"
	"github.com/rosterhq/rosterd/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testJWTSecret = "test-secret-for-jwt-integration-tests"
	testPassword  = "supersecretpassword"
	testAdminUser = "admin"
)

// testEnv holds all the shared state for integration tests.
type testEnv struct {
	server  *Server
	store   *store.Store
	authSvc *service.AuthService
}

// newTestEnv creates a fresh test environment with an in-memory store and a
// fully wired Server. cfg lets individual tests tighten limits; pass
// DefaultConfig() for the common case.
func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	st, err := store.Open(store.DefaultConfig())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	authSvc := service.NewAuthService(testJWTSecret, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		server:  New(cfg, st, authSvc, logger),
		store:   st,
		authSvc: authSvc,
	}
}

// seedAdmin creates the default admin account used by the login tests.
func (e *testEnv) seedAdmin(t *testing.T) {
	t.Helper()
	hash, err := service.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := e.store.CreateAdmin(context.Background(), &model.Admin{
		Username:     testAdminUser,
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
}

// adminToken logs in as the default admin and returns the session token.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	body := jsonBody(t, map[string]string{
		"username": testAdminUser,
		"password": testPassword,
	})
	rr := e.do(t, "POST", "/api/auth/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("adminToken: got empty token from login")
	}
	return resp.Token
}

// do executes an HTTP request against the test server and returns the recorder.
// headers is an optional map of header key-value pairs.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

// doAuth executes an authenticated HTTP request using the admin token.
func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return buf
}

// employeeBody builds a valid employee payload; override mutates it per test.
func employeeBody(t *testing.T, email string, override map[string]interface{}) *bytes.Buffer {
	t.Helper()
	payload := map[string]interface{}{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      email,
		"position":   "Rear Admiral",
		"department": "Navy",
		"salary":     120000.0,
		"hire_date":  "2024-01-15",
	}
	for k, v := range override {
		payload[k] = v
	}
	return jsonBody(t, payload)
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func assertContentType(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	got := rr.Header().Get("Content-Type")
	if got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Health check tests
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")

	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
}

// ---------------------------------------------------------------------------
// Login tests
// ---------------------------------------------------------------------------

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)

	body := jsonBody(t, map[string]string{
		"username": testAdminUser,
		"password": testPassword,
	})
	rr := env.do(t, "POST", "/api/auth/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
		ExpiresIn int    `json:"expires_in"`
		AdminID   int64  `json:"admin_id"`
		Username  string `json:"username"`
	}
	decodeJSON(t, rr, &resp)

	if resp.Token == "" {
		t.Error("expected non-empty token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("token_type = %q, want %q", resp.TokenType, "bearer")
	}
	if resp.ExpiresIn <= 0 {
		t.Errorf("expires_in = %d, want > 0", resp.ExpiresIn)
	}
	if resp.Username != testAdminUser {
		t.Errorf("username = %q, want %q", resp.Username, testAdminUser)
	}
}

func TestLogin_WrongPasswordAndUnknownUserIndistinguishable(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)

	wrongPass := env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": testAdminUser,
		"password": "wrongpassword",
	}), nil)
	assertStatus(t, wrongPass, http.StatusUnauthorized)

	unknownUser := env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": "nobody",
		"password": testPassword,
	}), nil)
	assertStatus(t, unknownUser, http.StatusUnauthorized)

	// The two failure modes must be byte-identical so the endpoint does not
	// leak which usernames exist.
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Errorf("response bodies differ:\n wrong password: %s\n unknown user:   %s",
			wrongPass.Body.String(), unknownUser.Body.String())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)

	rr := env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{"username": testAdminUser}), nil)
	assertStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{"password": testPassword}), nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestLogin_InvalidJSONBody(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	body := bytes.NewBufferString("{invalid json")
	rr := env.do(t, "POST", "/api/auth/login", body, nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoginRateAttempts = 3
	cfg.LoginRateWindow = time.Minute
	env := newTestEnv(t, cfg)
	env.seedAdmin(t)

	badBody := func() *bytes.Buffer {
		return jsonBody(t, map[string]string{
			"username": testAdminUser,
			"password": "wrongpassword",
		})
	}

	for i := 0; i < 3; i++ {
		rr := env.do(t, "POST", "/api/auth/login", badBody(), nil)
		assertStatus(t, rr, http.StatusUnauthorized)
	}

	rr := env.do(t, "POST", "/api/auth/login", badBody(), nil)
	assertStatus(t, rr, http.StatusTooManyRequests)

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, rr, &errResp)
	if errResp.Error.Code != 429 {
		t.Errorf("error.code = %d, want 429", errResp.Error.Code)
	}

	// The limit applies to login only; unrelated routes keep working.
	rr = env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
}

// ---------------------------------------------------------------------------
// Token verification tests
// ---------------------------------------------------------------------------

func TestVerify_Success(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/auth/verify", nil, token)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Valid    bool   `json:"valid"`
		AdminID  int64  `json:"admin_id"`
		Username string `json:"username"`
	}
	decodeJSON(t, rr, &resp)
	if !resp.Valid {
		t.Error("expected valid = true")
	}
	if resp.Username != testAdminUser {
		t.Errorf("username = %q, want %q", resp.Username, testAdminUser)
	}
}

func TestVerify_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.do(t, "POST", "/api/auth/verify", nil, nil)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestVerify_GarbageToken(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.doAuth(t, "POST", "/api/auth/verify", nil, "invalid.jwt.token")
	assertStatus(t, rr, http.StatusForbidden)
}

// ---------------------------------------------------------------------------
// Authentication gate on employee routes
// ---------------------------------------------------------------------------

func TestEmployeeEndpoints_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/employees"},
		{"POST", "/api/employees"},
		{"GET", "/api/employees/1"},
		{"PUT", "/api/employees/1"},
		{"DELETE", "/api/employees/1"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			var body io.Reader
			if ep.method == "POST" || ep.method == "PUT" {
				body = jsonBody(t, map[string]string{})
			}
			rr := env.do(t, ep.method, ep.path, body, nil)
			assertStatus(t, rr, http.StatusUnauthorized)
		})
	}
}

func TestEmployeeEndpoints_InvalidToken(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.doAuth(t, "GET", "/api/employees", nil, "invalid.jwt.token")
	assertStatus(t, rr, http.StatusForbidden)
}

// ---------------------------------------------------------------------------
// Employee CRUD tests
// ---------------------------------------------------------------------------

func TestEmployeeCRUD(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	// --- List starts empty ---
	rr := env.doAuth(t, "GET", "/api/employees", nil, token)
	assertStatus(t, rr, http.StatusOK)

	var list []map[string]interface{}
	decodeJSON(t, rr, &list)
	if len(list) != 0 {
		t.Fatalf("initial list count = %d, want 0", len(list))
	}

	// --- Create ---
	rr = env.doAuth(t, "POST", "/api/employees", employeeBody(t, "grace@example.com", nil), token)
	assertStatus(t, rr, http.StatusCreated)

	var created map[string]interface{}
	decodeJSON(t, rr, &created)
	if created["email"] != "grace@example.com" {
		t.Errorf("created email = %v, want grace@example.com", created["email"])
	}
	if created["id"] == nil {
		t.Fatal("expected id in create response")
	}
	id := jsonID(t, created["id"])

	// --- Get ---
	rr = env.doAuth(t, "GET", "/api/employees/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)

	var got map[string]interface{}
	decodeJSON(t, rr, &got)
	if got["first_name"] != "Grace" {
		t.Errorf("first_name = %v, want Grace", got["first_name"])
	}
	createdAt := got["created_at"]

	// --- List now has one ---
	rr = env.doAuth(t, "GET", "/api/employees", nil, token)
	assertStatus(t, rr, http.StatusOK)
	decodeJSON(t, rr, &list)
	if len(list) != 1 {
		t.Fatalf("list count = %d, want 1", len(list))
	}

	// --- Update ---
	rr = env.doAuth(t, "PUT", "/api/employees/"+id, employeeBody(t, "grace@example.com", map[string]interface{}{
		"position": "Commodore",
		"salary":   150000.0,
	}), token)
	assertStatus(t, rr, http.StatusOK)

	var updated map[string]interface{}
	decodeJSON(t, rr, &updated)
	if updated["position"] != "Commodore" {
		t.Errorf("updated position = %v, want Commodore", updated["position"])
	}
	if updated["created_at"] != createdAt {
		t.Errorf("created_at changed on update: %v -> %v", createdAt, updated["created_at"])
	}

	// --- Delete ---
	rr = env.doAuth(t, "DELETE", "/api/employees/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)

	var delResp map[string]interface{}
	decodeJSON(t, rr, &delResp)
	if delResp["success"] != true {
		t.Errorf("delete success = %v, want true", delResp["success"])
	}

	// --- Gone ---
	rr = env.doAuth(t, "GET", "/api/employees/"+id, nil, token)
	assertStatus(t, rr, http.StatusNotFound)

	rr = env.doAuth(t, "DELETE", "/api/employees/"+id, nil, token)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestCreateEmployee_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/employees", employeeBody(t, "dup@example.com", nil), token)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.doAuth(t, "POST", "/api/employees", employeeBody(t, "dup@example.com", nil), token)
	assertStatus(t, rr, http.StatusConflict)

	// Email uniqueness ignores case.
	rr = env.doAuth(t, "POST", "/api/employees", employeeBody(t, "DUP@Example.COM", nil), token)
	assertStatus(t, rr, http.StatusConflict)
}

func TestUpdateEmployee_EmailConflict(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/employees", employeeBody(t, "a@example.com", nil), token)
	assertStatus(t, rr, http.StatusCreated)
	var a map[string]interface{}
	decodeJSON(t, rr, &a)

	rr = env.doAuth(t, "POST", "/api/employees", employeeBody(t, "b@example.com", nil), token)
	assertStatus(t, rr, http.StatusCreated)

	// Moving A onto B's email is a conflict.
	rr = env.doAuth(t, "PUT", "/api/employees/"+jsonID(t, a["id"]), employeeBody(t, "b@example.com", nil), token)
	assertStatus(t, rr, http.StatusConflict)

	// Re-saving A with its own email is fine.
	rr = env.doAuth(t, "PUT", "/api/employees/"+jsonID(t, a["id"]), employeeBody(t, "a@example.com", nil), token)
	assertStatus(t, rr, http.StatusOK)
}

func TestUpdateEmployee_NotFound(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "PUT", "/api/employees/9999", employeeBody(t, "ghost@example.com", nil), token)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestCreateEmployee_Validation(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	body := jsonBody(t, map[string]interface{}{
		"first_name": "",
		"last_name":  "Hopper",
		"email":      "not-an-email",
		"position":   "Engineer",
		"department": "R&D",
		"salary":     -5.0,
		"hire_date":  "15/01/2024",
	})
	rr := env.doAuth(t, "POST", "/api/employees", body, token)
	assertStatus(t, rr, http.StatusBadRequest)

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Context struct {
				Violations []struct {
					Field  string `json:"field"`
					Reason string `json:"reason"`
				} `json:"violations"`
			} `json:"context"`
		} `json:"error"`
	}
	decodeJSON(t, rr, &errResp)

	if errResp.Error.Code != 400 {
		t.Errorf("error.code = %d, want 400", errResp.Error.Code)
	}
	// first_name, email, salary, and hire_date are all invalid; every
	// violation is reported in one pass.
	if len(errResp.Error.Context.Violations) < 4 {
		t.Errorf("violations count = %d, want >= 4; body = %s",
			len(errResp.Error.Context.Violations), rr.Body.String())
	}
	fields := make(map[string]bool)
	for _, v := range errResp.Error.Context.Violations {
		fields[v.Field] = true
	}
	for _, f := range []string{"first_name", "email", "salary", "hire_date"} {
		if !fields[f] {
			t.Errorf("missing violation for field %q", f)
		}
	}
}

func TestGetEmployee_BadID(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "GET", "/api/employees/abc", nil, token)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestListEmployees_NewestFirst(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.seedAdmin(t)
	token := env.adminToken(t)

	for _, email := range []string{"one@example.com", "two@example.com", "three@example.com"} {
		rr := env.doAuth(t, "POST", "/api/employees", employeeBody(t, email, nil), token)
		assertStatus(t, rr, http.StatusCreated)
	}

	rr := env.doAuth(t, "GET", "/api/employees", nil, token)
	assertStatus(t, rr, http.StatusOK)

	var list []map[string]interface{}
	decodeJSON(t, rr, &list)
	if len(list) != 3 {
		t.Fatalf("list count = %d, want 3", len(list))
	}
	if list[0]["email"] != "three@example.com" {
		t.Errorf("list[0].email = %v, want three@example.com (newest first)", list[0]["email"])
	}
}

// ---------------------------------------------------------------------------
// OpenAPI spec endpoint
// ---------------------------------------------------------------------------

func TestOpenAPISpec(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.do(t, "GET", "/openapi.json", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")

	var spec map[string]interface{}
	decodeJSON(t, rr, &spec)

	if spec["openapi"] != "3.1.0" {
		t.Errorf("openapi version = %v, want 3.1.0", spec["openapi"])
	}
	info, ok := spec["info"].(map[string]interface{})
	if !ok {
		t.Fatal("expected info to be an object")
	}
	if info["title"] != "Rosterd API" {
		t.Errorf("info.title = %v, want Rosterd API", info["title"])
	}
	paths, ok := spec["paths"].(map[string]interface{})
	if !ok {
		t.Fatal("expected paths to be an object")
	}
	for _, p := range []string{"/api/auth/login", "/api/auth/verify", "/api/employees", "/api/employees/{id}"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("missing path %q in spec", p)
		}
	}
}

// ---------------------------------------------------------------------------
// Error response format test
// ---------------------------------------------------------------------------

func TestErrorResponseFormat(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.do(t, "GET", "/api/employees", nil, nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, rr, &errResp)

	if errResp.Error.Code != 401 {
		t.Errorf("error.code = %d, want 401", errResp.Error.Code)
	}
	if errResp.Error.Message == "" {
		t.Error("expected non-empty error.message")
	}
}

// ---------------------------------------------------------------------------
// CORS headers test
// ---------------------------------------------------------------------------

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	rr := env.do(t, "OPTIONS", "/healthz", nil, map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "Authorization,Content-Type",
	})

	if rr.Code < 200 || rr.Code >= 300 {
		t.Errorf("CORS preflight status = %d, want 2xx", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}

// jsonID renders a decoded JSON number as a path segment.
func jsonID(t *testing.T, v interface{}) string {
	t.Helper()
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("expected numeric id, got %T (%v)", v, v)
	}
	return strconv.FormatInt(int64(f), 10)
}
