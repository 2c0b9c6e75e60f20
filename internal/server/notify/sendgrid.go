package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// DefaultSendGridEndpoint is the SendGrid v3 mail-send API.
const DefaultSendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

const resetSubject = "Password reset"

// SendGridNotifier emails reset tokens through SendGrid.
type SendGridNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
	client    *http.Client
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		endpoint:  DefaultSendGridEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint points the notifier at another mail-send URL.
func (n *SendGridNotifier) WithEndpoint(url string) *SendGridNotifier {
	n.endpoint = url
	return n
}

func (n *SendGridNotifier) SendResetToken(ctx context.Context, user *models.User, token string) error {
	name := user.FirstName
	if name == "" {
		name = user.UserName
	}

	payload := sgMailPayload{
		Personalizations: []sgPersonalization{{
			To: []sgAddress{{Email: user.Email, Name: name}},
		}},
		From:    sgAddress{Email: n.fromEmail, Name: n.fromName},
		Subject: resetSubject,
		Content: []sgContent{{
			Type:  "text/plain",
			Value: fmt.Sprintf("Hello %s,\n\nUse this token to reset your password:\n\n%s\n\nIf you did not ask for a reset, ignore this message.\n", name, token),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SendGrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create SendGrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("SendGrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("SendGrid returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// SendGrid v3 Mail Send API payload types.
type sgMailPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
