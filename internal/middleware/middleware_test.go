package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// whoAmI echoes the authenticated user ID.
type whoAmI struct {
	apiconnect.UnimplementedAuthServiceHandler
}

func (whoAmI) GetCurrentUser(ctx context.Context, _ *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: &api.User{ID: GetUserID(ctx), Email: GetEmail(ctx)},
	}), nil
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("middleware-test-secret", time.Hour)
	m := metrics.New()

	mux := http.NewServeMux()
	path, handler := apiconnect.NewAuthServiceHandler(whoAmI{},
		connect.WithInterceptors(RequireAuth(jwtManager), MetricsInterceptor(m), LoggingInterceptor()))
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := apiconnect.NewAuthServiceClient(server.Client(), server.URL)
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := client.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected Unauthenticated, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Authorization", "Bearer not-a-jwt")
		_, err := client.GetCurrentUser(ctx, req)
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected Unauthenticated, got %v", err)
		}
	})

	t.Run("valid token puts user in context", func(t *testing.T) {
		token, err := jwtManager.Generate(&models.User{ID: "u-42", Email: "u42@example.com"})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Authorization", "Bearer "+token)
		resp, err := client.GetCurrentUser(ctx, req)
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.ID != "u-42" || resp.Msg.User.Email != "u42@example.com" {
			t.Errorf("unexpected user %+v", resp.Msg.User)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("middleware-test-secret", time.Hour)

	mux := http.NewServeMux()
	path, handler := apiconnect.NewAuthServiceHandler(whoAmI{}, connect.WithInterceptors(OptionalAuth(jwtManager)))
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := apiconnect.NewAuthServiceClient(server.Client(), server.URL)
	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer expired-or-bogus")
	resp, err := client.GetCurrentUser(context.Background(), req)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if resp.Msg.User.ID != "" {
		t.Errorf("expected anonymous caller, got %q", resp.Msg.User.ID)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "https://x.example", method: http.MethodPost, wantOrigin: "*", wantStatus: http.StatusTeapot},
		{name: "listed origin", origins: []string{"https://app.example"}, origin: "https://app.example", method: http.MethodPost, wantOrigin: "https://app.example", wantStatus: http.StatusTeapot},
		{name: "unlisted origin", origins: []string{"https://app.example"}, origin: "https://evil.example", method: http.MethodPost, wantOrigin: "", wantStatus: http.StatusTeapot},
		{name: "preflight", origins: []string{"*"}, origin: "https://x.example", method: http.MethodOptions, wantOrigin: "*", wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/settleup.v1.GroupService/ListGroups", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			RequestLogger(CORS(tt.origins)(next)).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
