package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/http/response"
	"github.com/reviewhub/credential-service/internal/observability"
	"github.com/reviewhub/credential-service/internal/service"
)

type CredentialHandler struct {
	accounts service.AccountServiceInterface
	logger   *slog.Logger
}

func NewCredentialHandler(accounts service.AccountServiceInterface, logger *slog.Logger) *CredentialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialHandler{accounts: accounts, logger: logger}
}

type registerResponse struct {
	User                 *domain.User `json:"user"`
	RequiresVerification bool         `json:"requires_verification"`
	DispatchFailed       bool         `json:"dispatch_failed,omitempty"`
}

type loginCheckResponse struct {
	User          *domain.User `json:"user"`
	EmailVerified bool         `json:"email_verified"`
}

func (h *CredentialHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var body struct {
		Email     string `json:"email"`
		UserName  string `json:"user_name"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	user, err := h.accounts.SignUp(r.Context(), service.SignUpInput{
		Email:     body.Email,
		UserName:  body.UserName,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
	})
	if errors.Is(err, service.ErrDispatchFailed) && user != nil {
		status = "partial"
		h.logger.WarnContext(r.Context(), "verification pin dispatch failed after registration", "identity", user.ID, "error", err)
		h.audit(r, "credential.register", user.ID, "register", "partial", "dispatch_failed")
		response.JSON(w, r, http.StatusAccepted, registerResponse{User: user, RequiresVerification: true, DispatchFailed: true})
		return
	}
	if err != nil {
		status = "failure"
		h.audit(r, "credential.register", "", "register", "failure", failureReason(err))
		writeServiceError(w, r, err)
		return
	}

	h.audit(r, "credential.register", user.ID, "register", "success", "credential_created")
	response.JSON(w, r, http.StatusCreated, registerResponse{User: user, RequiresVerification: true})
}

func (h *CredentialHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "verify_resend", status, time.Since(start))
	}()

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.acceptAnonymous(w, r, "verify_resend", h.accounts.ResendVerification(r.Context(), body.Email)) {
		status = "failure"
		return
	}
	h.audit(r, "credential.verify.resend", "", "verify_resend", "accepted", "resend_requested")
	response.JSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *CredentialHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "verify_confirm", status, time.Since(start))
	}()

	var body struct {
		Email string `json:"email"`
		Pin   string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.accounts.ConfirmEmail(r.Context(), body.Email, body.Pin); err != nil {
		status = "failure"
		h.audit(r, "credential.verify.confirm", "", "verify_confirm", "failure", failureReason(err))
		writeServiceError(w, r, err)
		return
	}
	h.audit(r, "credential.verify.confirm", "", "verify_confirm", "success", "email_verified")
	response.JSON(w, r, http.StatusOK, map[string]bool{"email_verified": true})
}

func (h *CredentialHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "password_forgot", status, time.Since(start))
	}()

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.acceptAnonymous(w, r, "password_forgot", h.accounts.ForgotPassword(r.Context(), body.Email)) {
		status = "failure"
		return
	}
	h.audit(r, "credential.password.forgot", "", "password_forgot", "accepted", "reset_requested")
	response.JSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *CredentialHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "password_reset", status, time.Since(start))
	}()

	var body struct {
		Email       string `json:"email"`
		Pin         string `json:"pin"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if body.NewPassword == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "new_password is required", nil)
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), body.Email, body.Pin, body.NewPassword); err != nil {
		status = "failure"
		h.audit(r, "credential.password.reset", "", "password_reset", "failure", failureReason(err))
		writeServiceError(w, r, err)
		return
	}
	h.audit(r, "credential.password.reset", "", "password_reset", "success", "password_updated")
	response.JSON(w, r, http.StatusOK, map[string]bool{"password_reset": true})
}

// LoginCheck only compares the password; it never issues a session.
func (h *CredentialHandler) LoginCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "login_check", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	res, err := h.accounts.CheckLogin(r.Context(), body.Email, body.Password)
	if err != nil {
		status = "failure"
		h.audit(r, "credential.login.check", "", "login_check", "failure", failureReason(err))
		writeServiceError(w, r, err)
		return
	}
	h.audit(r, "credential.login.check", res.User.ID, "login_check", "success", "password_matched")
	response.JSON(w, r, http.StatusOK, loginCheckResponse{User: res.User, EmailVerified: res.EmailVerified})
}

// acceptAnonymous answers the enumeration-safe endpoints. A failed dispatch
// is logged and still reported as accepted.
func (h *CredentialHandler) acceptAnonymous(w http.ResponseWriter, r *http.Request, flow string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrDispatchFailed):
		h.logger.WarnContext(r.Context(), "pin dispatch failed", "flow", flow, "error", err)
		return true
	case errors.Is(err, service.ErrInvalidInput):
		return true
	default:
		h.audit(r, "credential."+strings.ReplaceAll(flow, "_", "."), "", flow, "failure", failureReason(err))
		writeServiceError(w, r, err)
		return false
	}
}

func (h *CredentialHandler) audit(r *http.Request, event, identity, action, outcome, reason string) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   event,
		ActorUserID: identity,
		TargetType:  "credential",
		TargetID:    identity,
		Action:      action,
		Outcome:     outcome,
		Reason:      reason,
	})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, service.ErrWeakPassword):
		response.Error(w, r, http.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 12 characters and mix upper, lower, digit and symbol", nil)
	case errors.Is(err, service.ErrCredentialExists):
		response.Error(w, r, http.StatusConflict, "EMAIL_TAKEN", "email is already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
	case service.IsPinRejection(err), errors.Is(err, service.ErrInvalidSecret):
		response.Error(w, r, http.StatusBadRequest, "INVALID_OR_EXPIRED_PIN", "pin is invalid or expired", nil)
	case errors.Is(err, service.ErrPersistenceConflict):
		response.Error(w, r, http.StatusServiceUnavailable, "CONFLICT_RETRY", "request conflicted with a concurrent update, retry", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, service.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, service.ErrCredentialExists):
		return "email_taken"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrPinExpired):
		return "pin_expired"
	case errors.Is(err, service.ErrPinMismatch):
		return "pin_mismatch"
	case errors.Is(err, service.ErrNoActivePin):
		return "no_active_pin"
	case errors.Is(err, service.ErrCredentialNotFound):
		return "unknown_identity"
	case errors.Is(err, service.ErrInvalidSecret):
		return "invalid_secret"
	case errors.Is(err, service.ErrPersistenceConflict):
		return "conflict"
	default:
		return "internal"
	}
}
