package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = &models.User{UserName: "alice", FirstName: "Alice", Email: "alice@x.com"}

func TestLogNotifier_LogsToken(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, NewLogNotifier(l).SendResetToken(context.Background(), alice, "tok-123"))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "token=tok-123")
	assert.Contains(t, out, "email=alice@x.com")
	assert.Contains(t, out, "module=notify")
}

func TestSendGridNotifier_PostsMail(t *testing.T) {
	var got sgMailPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewSendGridNotifier("sg-key", "noreply@x.com", "Accounts").WithEndpoint(srv.URL)
	require.NoError(t, n.SendResetToken(context.Background(), alice, "tok-123"))

	assert.Equal(t, "Bearer sg-key", auth)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "alice@x.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@x.com", got.From.Email)
	assert.Equal(t, resetSubject, got.Subject)
	require.Len(t, got.Content, 1)
	assert.Contains(t, got.Content[0].Value, "tok-123")
	assert.Contains(t, got.Content[0].Value, "Hello Alice")
}

func TestSendGridNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	n := NewSendGridNotifier("bad", "noreply@x.com", "").WithEndpoint(srv.URL)
	err := n.SendResetToken(context.Background(), alice, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestSendGridNotifier_UnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewSendGridNotifier("k", "f@x.com", "").WithEndpoint(url).SendResetToken(context.Background(), alice, "tok")
	assert.Error(t, err)
}

var _ Notifier = (*LogNotifier)(nil)
var _ Notifier = (*SendGridNotifier)(nil)
