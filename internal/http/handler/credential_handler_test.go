package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/service"
	servicegomock "github.com/reviewhub/credential-service/internal/service/gomock"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newCredentialRouterForTest(t *testing.T) (*servicegomock.MockAccountServiceInterface, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := servicegomock.NewMockAccountServiceInterface(ctrl)
	h := NewCredentialHandler(accounts, nil)
	users := NewUserHandler(accounts)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/verify/resend", h.ResendVerification)
		r.Post("/auth/verify/confirm", h.ConfirmEmail)
		r.Post("/auth/password/forgot", h.ForgotPassword)
		r.Post("/auth/password/reset", h.ResetPassword)
		r.Post("/auth/login/check", h.LoginCheck)
		r.Get("/users/{id}", users.Get)
		r.Post("/users/{id}/password", users.ChangePassword)
	})
	return accounts, r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response: %v body=%s", err, rr.Body.String())
	}
	return rr, env
}

func TestCredentialHandlerRegister(t *testing.T) {
	accounts, h := newCredentialRouterForTest(t)
	const body = `{"email":"Ana@Example.com","user_name":"reviewer","first_name":"Ana","last_name":"Lima","password":"Valid#Pass123"}`

	t.Run("created", func(t *testing.T) {
		accounts.EXPECT().SignUp(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in service.SignUpInput) (*domain.User, error) {
			if in.Email != "Ana@Example.com" || in.UserName != "reviewer" || in.Password != "Valid#Pass123" {
				t.Fatalf("unexpected sign up input %+v", in)
			}
			return &domain.User{ID: "u-1", Email: "ana@example.com"}, nil
		})
		rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", body)
		if rr.Code != http.StatusCreated || !env.Success {
			t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
		}
		var data registerResponse
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data.User == nil || data.User.ID != "u-1" || !data.RequiresVerification || data.DispatchFailed {
			t.Fatalf("unexpected data %+v", data)
		}
		if strings.Contains(rr.Body.String(), "password") {
			t.Fatalf("response leaked password field: %s", rr.Body.String())
		}
	})

	t.Run("dispatch failure is accepted with flag", func(t *testing.T) {
		accounts.EXPECT().SignUp(gomock.Any(), gomock.Any()).Return(
			&domain.User{ID: "u-2"}, fmt.Errorf("%w: smtp down", service.ErrDispatchFailed))
		rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", body)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rr.Code)
		}
		if !strings.Contains(string(env.Data), `"dispatch_failed":true`) {
			t.Fatalf("expected dispatch_failed flag, got %s", env.Data)
		}
	})

	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{name: "email taken", err: service.ErrCredentialExists, code: http.StatusConflict, want: "EMAIL_TAKEN"},
		{name: "weak password", err: service.ErrWeakPassword, code: http.StatusBadRequest, want: "WEAK_PASSWORD"},
		{name: "invalid input", err: fmt.Errorf("%w: user_name must be between 5 and 20 characters", service.ErrInvalidInput), code: http.StatusBadRequest, want: "VALIDATION"},
		{name: "conflict", err: service.ErrPersistenceConflict, code: http.StatusServiceUnavailable, want: "CONFLICT_RETRY"},
		{name: "internal", err: fmt.Errorf("boom"), code: http.StatusInternalServerError, want: "INTERNAL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			accounts.EXPECT().SignUp(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", body)
			if rr.Code != tc.code || env.Error == nil || env.Error.Code != tc.want {
				t.Fatalf("expected %d/%s, got %d body=%s", tc.code, tc.want, rr.Code, rr.Body.String())
			}
		})
	}

	t.Run("malformed payload", func(t *testing.T) {
		rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", `{"email":`)
		if rr.Code != http.StatusBadRequest || env.Error.Code != "BAD_REQUEST" {
			t.Fatalf("expected 400 BAD_REQUEST, got %d", rr.Code)
		}
	})
}

func TestCredentialHandlerPinRejectionsAreGeneric(t *testing.T) {
	accounts, h := newCredentialRouterForTest(t)

	rejections := []error{
		service.ErrNoActivePin,
		service.ErrPinExpired,
		service.ErrPinMismatch,
		service.ErrCredentialNotFound,
		service.ErrInvalidSecret,
	}
	var messages []string
	for _, rejection := range rejections {
		accounts.EXPECT().ConfirmEmail(gomock.Any(), "ana@example.com", "0a1b2c3d").Return(rejection)
		rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/verify/confirm", `{"email":"ana@example.com","pin":"0a1b2c3d"}`)
		if rr.Code != http.StatusBadRequest || env.Error.Code != "INVALID_OR_EXPIRED_PIN" {
			t.Fatalf("%v: expected 400 INVALID_OR_EXPIRED_PIN, got %d body=%s", rejection, rr.Code, rr.Body.String())
		}
		messages = append(messages, env.Error.Message)
	}
	for _, m := range messages[1:] {
		if m != messages[0] {
			t.Fatalf("expected identical rejection messages, got %q and %q", messages[0], m)
		}
	}

	accounts.EXPECT().ResetPassword(gomock.Any(), "ana@example.com", "0a1b2c3d", "Newer#Pass456").Return(service.ErrPinExpired)
	rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/password/reset", `{"email":"ana@example.com","pin":"0a1b2c3d","new_password":"Newer#Pass456"}`)
	if rr.Code != http.StatusBadRequest || env.Error.Code != "INVALID_OR_EXPIRED_PIN" {
		t.Fatalf("expected reset rejection, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCredentialHandlerConfirmAndReset(t *testing.T) {
	accounts, h := newCredentialRouterForTest(t)

	accounts.EXPECT().ConfirmEmail(gomock.Any(), "ana@example.com", "0a1b2c3d").Return(nil)
	rr, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/verify/confirm", `{"email":"ana@example.com","pin":"0a1b2c3d"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	accounts.EXPECT().ResetPassword(gomock.Any(), "ana@example.com", "0a1b2c3d", "Newer#Pass456").Return(nil)
	rr, _ = doJSON(t, h, http.MethodPost, "/api/v1/auth/password/reset", `{"email":"ana@example.com","pin":"0a1b2c3d","new_password":"Newer#Pass456"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/password/reset", `{"email":"ana@example.com","pin":"0a1b2c3d"}`)
	if rr.Code != http.StatusBadRequest || env.Error.Code != "VALIDATION" {
		t.Fatalf("expected missing new_password to fail validation, got %d", rr.Code)
	}

	accounts.EXPECT().ResetPassword(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(service.ErrWeakPassword)
	rr, env = doJSON(t, h, http.MethodPost, "/api/v1/auth/password/reset", `{"email":"ana@example.com","pin":"0a1b2c3d","new_password":"short"}`)
	if rr.Code != http.StatusBadRequest || env.Error.Code != "WEAK_PASSWORD" {
		t.Fatalf("expected WEAK_PASSWORD, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCredentialHandlerAnonymousEndpointsAlwaysAccept(t *testing.T) {
	accounts, h := newCredentialRouterForTest(t)

	for _, err := range []error{nil, fmt.Errorf("account: %w: provider 500", service.ErrDispatchFailed)} {
		accounts.EXPECT().ResendVerification(gomock.Any(), "ana@example.com").Return(err)
		rr, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/verify/resend", `{"email":"ana@example.com"}`)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("resend with %v: expected 202, got %d", err, rr.Code)
		}

		accounts.EXPECT().ForgotPassword(gomock.Any(), "ana@example.com").Return(err)
		rr, _ = doJSON(t, h, http.MethodPost, "/api/v1/auth/password/forgot", `{"email":"ana@example.com"}`)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("forgot with %v: expected 202, got %d", err, rr.Code)
		}
	}

	accounts.EXPECT().ForgotPassword(gomock.Any(), gomock.Any()).Return(fmt.Errorf("account: %w", service.ErrPersistenceConflict))
	rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/password/forgot", `{"email":"ana@example.com"}`)
	if rr.Code != http.StatusServiceUnavailable || env.Error.Code != "CONFLICT_RETRY" {
		t.Fatalf("expected 503 CONFLICT_RETRY, got %d", rr.Code)
	}
}

func TestCredentialHandlerLoginCheck(t *testing.T) {
	accounts, h := newCredentialRouterForTest(t)

	accounts.EXPECT().CheckLogin(gomock.Any(), "ana@example.com", "Valid#Pass123").Return(&service.LoginCheck{
		User:          &domain.User{ID: "u-1", Email: "ana@example.com"},
		EmailVerified: false,
	}, nil)
	rr, env := doJSON(t, h, http.MethodPost, "/api/v1/auth/login/check", `{"email":"ana@example.com","password":"Valid#Pass123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var data loginCheckResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.User.ID != "u-1" || data.EmailVerified {
		t.Fatalf("unexpected login check data %+v", data)
	}
	if rr.Header().Get("Set-Cookie") != "" {
		t.Fatal("login check must not issue a session")
	}

	accounts.EXPECT().CheckLogin(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, service.ErrInvalidCredentials)
	rr, env = doJSON(t, h, http.MethodPost, "/api/v1/auth/login/check", `{"email":"ana@example.com","password":"nope"}`)
	if rr.Code != http.StatusUnauthorized || env.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d", rr.Code)
	}
}
