package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	accountservice "tasktrack/contexts/identity-access/account-service"
	"tasktrack/contexts/identity-access/account-service/adapters/crypto"
	accountmemory "tasktrack/contexts/identity-access/account-service/adapters/memory"
	"tasktrack/contexts/identity-access/account-service/adapters/token"
	accounterrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	todoservice "tasktrack/contexts/task-tracking/todo-service"
	todomemory "tasktrack/contexts/task-tracking/todo-service/adapters/memory"
)

type testOwners struct {
	accounts *accountmemory.Store
}

func (o testOwners) OwnerExists(ctx context.Context, accountID string) (bool, error) {
	_, err := o.accounts.FindByID(ctx, accountID)
	if errors.Is(err, accounterrors.ErrAccountNotFound) {
		return false, nil
	}
	return err == nil, err
}

// newTestServer wires both modules against in-memory stores, with the real
// token codec and a cheap bcrypt cost. A protected primordial admin
// (rootadmin / rootpassword123) is provisioned up front.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accountStore := accountmemory.NewStore()
	todoStore := todomemory.NewStore()

	accounts := accountservice.NewModule(accountservice.Dependencies{
		Repository:  accountStore,
		Todos:       todoStore,
		Hasher:      crypto.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      token.Codec{Secret: []byte("test-secret"), TTL: time.Hour},
		Clock:       accountStore,
		IDGenerator: accountStore,
		Logger:      logger,
	})
	todos := todoservice.NewModule(todoservice.Dependencies{
		Repository:  todoStore,
		Owners:      testOwners{accounts: accountStore},
		Clock:       todoStore,
		IDGenerator: todoStore,
		Logger:      logger,
	})

	if err := accounts.Service.EnsurePrimordialAdmin(context.Background(), "root@example.com", "rootadmin", "rootpassword123"); err != nil {
		t.Fatalf("provision primordial admin: %v", err)
	}

	return New(accounts, todos, logger, ":0")
}

func doRequest(t *testing.T, server *Server, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %s: %v", rr.Body.String(), err)
	}
}

// registerAndLogin creates an account through the public surface and returns
// its session token and account id.
func registerAndLogin(t *testing.T, server *Server, email, username, password string) (string, string) {
	t.Helper()
	rr := doRequest(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d body=%s", email, rr.Code, rr.Body.String())
	}

	return login(t, server, username, password)
}

func login(t *testing.T, server *Server, identifier, password string) (string, string) {
	t.Helper()
	rr := doRequest(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d body=%s", identifier, rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Token   string `json:"token"`
			Account struct {
				AccountID string `json:"account_id"`
			} `json:"account"`
		} `json:"data"`
	}
	decodeInto(t, rr, &resp)
	if resp.Data.Token == "" {
		t.Fatalf("login %s: empty token in %s", identifier, rr.Body.String())
	}
	return resp.Data.Token, resp.Data.Account.AccountID
}

func loginRoot(t *testing.T, server *Server) (string, string) {
	t.Helper()
	return login(t, server, "rootadmin", "rootpassword123")
}

func createTodo(t *testing.T, server *Server, bearer, title string) string {
	t.Helper()
	rr := doRequest(t, server, http.MethodPost, "/api/todos", bearer, map[string]string{"title": title})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create todo %q: expected 201, got %d body=%s", title, rr.Code, rr.Body.String())
	}
	var resp struct {
		Data struct {
			TodoID string `json:"todo_id"`
		} `json:"data"`
	}
	decodeInto(t, rr, &resp)
	return resp.Data.TodoID
}
