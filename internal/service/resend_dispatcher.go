package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	verificationEmailTemplate = template.Must(template.New("verify").Parse(`<p>Welcome to the community!</p>
<p>Your email verification code is <strong>{{.Pin}}</strong>. It expires at {{.ExpiresAt}}.</p>
{{if .ActionURL}}<p><a href="{{.ActionURL}}">Verify your email</a></p>{{end}}`))
	passwordResetEmailTemplate = template.Must(template.New("reset").Parse(`<p>We received a request to reset your password.</p>
<p>Your reset code is <strong>{{.Pin}}</strong>. It expires at {{.ExpiresAt}}.</p>
{{if .ActionURL}}<p><a href="{{.ActionURL}}">Choose a new password</a></p>{{end}}
<p>If you did not ask for this, you can ignore this email.</p>`))
)

type ResendPinDispatcher struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

func NewResendPinDispatcher(apiKey, from, baseURL string, timeout time.Duration) *ResendPinDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ResendPinDispatcher{
		apiKey:  apiKey,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendPinDispatcher) SendVerificationPin(ctx context.Context, notification PinNotification) error {
	return m.send(ctx, "Verify your email", verificationEmailTemplate, notification)
}

func (m *ResendPinDispatcher) SendPasswordResetPin(ctx context.Context, notification PinNotification) error {
	return m.send(ctx, "Reset your password", passwordResetEmailTemplate, notification)
}

func (m *ResendPinDispatcher) send(ctx context.Context, subject string, tmpl *template.Template, notification PinNotification) error {
	var html bytes.Buffer
	if err := tmpl.Execute(&html, struct {
		Pin       string
		ExpiresAt string
		ActionURL string
	}{
		Pin:       notification.Pin,
		ExpiresAt: notification.ExpiresAt.UTC().Format(time.RFC1123),
		ActionURL: notification.ActionURL,
	}); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	body, err := json.Marshal(resendSendRequest{
		From:    m.from,
		To:      []string{notification.Email},
		Subject: subject,
		HTML:    html.String(),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
