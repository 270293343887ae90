package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// testEnv is a running server backed by a temporary database.
type testEnv struct {
	t       *testing.T
	url     string
	client  *http.Client
	auth    apiconnect.AuthServiceClient
	metrics *metrics.Metrics
}

// testUser is a registered account with clients that send its token.
type testUser struct {
	ID     string
	Name   string
	Token  string
	Auth   apiconnect.AuthServiceClient
	Groups apiconnect.GroupServiceClient
	Ledger apiconnect.LedgerServiceClient
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("service-test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	m := metrics.New()

	protected := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, logger),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store), protected))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(store, m), protected))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		t:       t,
		url:     server.URL,
		client:  server.Client(),
		auth:    apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		metrics: m,
	}
}

// bearer attaches a token to every outgoing request.
func bearer(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}))
}

func (e *testEnv) clientsFor(token string) (apiconnect.AuthServiceClient, apiconnect.GroupServiceClient, apiconnect.LedgerServiceClient) {
	return apiconnect.NewAuthServiceClient(e.client, e.url, bearer(token)),
		apiconnect.NewGroupServiceClient(e.client, e.url, bearer(token)),
		apiconnect.NewLedgerServiceClient(e.client, e.url, bearer(token))
}

func (e *testEnv) register(name, email string) *testUser {
	e.t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "correct-horse",
	}))
	if err != nil {
		e.t.Fatalf("Register(%s) failed: %v", email, err)
	}
	u := &testUser{ID: resp.Msg.User.ID, Name: name, Token: resp.Msg.Token}
	u.Auth, u.Groups, u.Ledger = e.clientsFor(resp.Msg.Token)
	return u
}

// createGroup creates a group owned by u with the given extra members.
func createGroup(t *testing.T, u *testUser, name string, members ...api.Member) *api.Group {
	t.Helper()
	resp, err := u.Groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// memberID finds a member's ID by display name.
func memberID(t *testing.T, g *api.Group, name string) string {
	t.Helper()
	for _, m := range g.Members {
		if m.Name == name {
			return m.ID
		}
	}
	t.Fatalf("no member named %q in %+v", name, g.Members)
	return ""
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected %v, got %v (%v)", code, got, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
