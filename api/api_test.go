package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jacentio/constellation/api"
	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/model/sadalsuud"
	"github.com/jacentio/constellation/service"
	"github.com/jacentio/constellation/store"
	"github.com/jacentio/constellation/store/storetest"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) (*api.Server, *storetest.Client) {
	t.Helper()
	r := store.NewRegistry()
	if err := errors.Join(sadalsuud.Register(r), altarf.Register(r)); err != nil {
		t.Fatalf("register: %v", err)
	}
	client := storetest.NewClient()
	s := store.NewWithRegistry(client, store.DefaultConfig(), r)

	altarfUsers := service.NewAltarfUserService(s, nil)
	svc := api.Services{
		Users:       service.NewUserService(s, nil, nil),
		AltarfUsers: altarfUsers,
		Pairs:       service.NewPairService(s, nil, nil),
		Quizzes:     service.NewQuizService(s, altarfUsers, nil, nil),
	}
	return api.NewServer(svc, nil), client
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: unmarshal %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestServer_UserLifecycle(t *testing.T) {
	srv, _ := newServer(t)

	status, env := do(t, srv, "POST", "/sadalsuud/users", `{"lineUserId":"abc","name":"tester","role":"STAR_RAIN"}`)
	if status != http.StatusOK || env.Status != "SUCCESS" {
		t.Fatalf("add: expected 200 SUCCESS, got %d %+v", status, env)
	}
	var added sadalsuud.User
	if err := json.Unmarshal(env.Data, &added); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if added.CreationID == "" {
		t.Fatal("expected assigned creationId")
	}

	status, env = do(t, srv, "GET", "/sadalsuud/users/"+added.CreationID, "")
	if status != http.StatusOK {
		t.Errorf("get: expected 200, got %d", status)
	}

	status, env = do(t, srv, "GET", "/sadalsuud/line-users/abc", "")
	if status != http.StatusOK || !strings.Contains(string(env.Data), added.CreationID) {
		t.Errorf("get by line id: unexpected %d %s", status, env.Data)
	}

	status, env = do(t, srv, "GET", "/sadalsuud/line-users/xyz", "")
	if status != http.StatusOK || string(env.Data) != "null" {
		t.Errorf("expected null data for unknown line id, got %d %s", status, env.Data)
	}

	status, env = do(t, srv, "GET", "/sadalsuud/users", "")
	if status != http.StatusOK || !strings.HasPrefix(string(env.Data), "[") {
		t.Errorf("get all: unexpected %d %s", status, env.Data)
	}
}

func TestServer_DuplicateLineID(t *testing.T) {
	srv, _ := newServer(t)
	for i := 0; i < 2; i++ {
		do(t, srv, "POST", "/sadalsuud/users", `{"lineUserId":"dup","name":"tester","role":"STAR_RAIN"}`)
	}

	status, env := do(t, srv, "GET", "/sadalsuud/line-users/dup", "")
	if status != http.StatusInternalServerError || env.Code != "DATA_CORRUPTION" {
		t.Errorf("expected 500 DATA_CORRUPTION, got %d %+v", status, env)
	}
}

func TestServer_BadRequests(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"malformed json", "POST", "/sadalsuud/users", `{`},
		{"invalid user", "POST", "/sadalsuud/users", `{"name":"x"}`},
		{"self pair", "POST", "/altarf/pairs", `{"teacherId":"t","studentId":"t"}`},
		{"assign without time", "POST", "/altarf/quizzes/assign", `{"lineUserId":"l","studentId":["s"],"quizId":["q"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, srv, tt.method, tt.path, tt.body)
			if status != http.StatusBadRequest || env.Code != "BAD_REQUEST" {
				t.Errorf("expected 400 BAD_REQUEST, got %d %+v", status, env)
			}
		})
	}
}

func TestServer_StoreFailure(t *testing.T) {
	srv, client := newServer(t)
	client.QueryErr = errors.New("throttled")

	status, env := do(t, srv, "GET", "/altarf/teachers/t1/pairs", "")
	if status != http.StatusBadGateway || env.Code != "STORE" {
		t.Errorf("expected 502 STORE, got %d %+v", status, env)
	}
}

func TestServer_QuizFlow(t *testing.T) {
	srv, _ := newServer(t)

	status, env := do(t, srv, "POST", "/altarf/quizzes", `{"lineUserId":"nobody","label":"q","rows":[{"question":"a","type":"S","options":"1","answer":"1"}]}`)
	if status != http.StatusNotFound || env.Code != "NOT_FOUND" {
		t.Errorf("expected 404 for unknown teacher, got %d %+v", status, env)
	}

	status, _ = do(t, srv, "POST", "/altarf/pairs", `{"teacherId":"t1","studentId":"s1"}`)
	if status != http.StatusOK {
		t.Fatalf("pair: expected 200, got %d", status)
	}
	status, env = do(t, srv, "GET", "/altarf/students/s1/pairs", "")
	if status != http.StatusOK || !strings.Contains(string(env.Data), `"teacherId":"t1"`) {
		t.Errorf("list by student: unexpected %d %s", status, env.Data)
	}
}
