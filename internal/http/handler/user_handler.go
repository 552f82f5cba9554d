package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/http/response"
	"github.com/reviewhub/credential-service/internal/observability"
	"github.com/reviewhub/credential-service/internal/service"
)

type UserHandler struct {
	accounts service.AccountServiceInterface
}

func NewUserHandler(accounts service.AccountServiceInterface) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type userResponse struct {
	User              *domain.User `json:"user"`
	EmailVerifiedAt   *time.Time   `json:"email_verified_at"`
	PasswordChangedAt *time.Time   `json:"password_changed_at"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "user_get", status, time.Since(start))
	}()

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	profile, err := h.accounts.GetUser(r.Context(), id)
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrCredentialNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load user", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, userResponse{
		User:              profile.User,
		EmailVerifiedAt:   profile.EmailVerifiedAt,
		PasswordChangedAt: profile.PasswordChangedAt,
	})
}

// ChangePassword requires the current password; it is the only proof of
// ownership this service accepts outside a pin.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordCredentialRequestDuration(r.Context(), "password_change", status, time.Since(start))
	}()

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || id == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if body.NewPassword == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "new_password is required", nil)
		return
	}
	err := h.accounts.ChangePassword(r.Context(), id, body.CurrentPassword, body.NewPassword)
	if errors.Is(err, service.ErrCredentialNotFound) || errors.Is(err, service.ErrInvalidSecret) {
		err = service.ErrInvalidCredentials
	}
	if err != nil {
		status = "failure"
		observability.EmitAudit(r, observability.AuditInput{
			EventName: "credential.password.change", ActorUserID: id, TargetType: "credential", TargetID: id,
			Action: "password_change", Outcome: "failure", Reason: failureReason(err),
		})
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "credential.password.change", ActorUserID: id, TargetType: "credential", TargetID: id,
		Action: "password_change", Outcome: "success", Reason: "password_updated",
	})
	response.JSON(w, r, http.StatusOK, map[string]bool{"password_changed": true})
}
