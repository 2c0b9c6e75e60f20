// Package notify delivers password-reset tokens to account holders.
package notify

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Notifier sends a freshly issued reset token to user.
type Notifier interface {
	SendResetToken(ctx context.Context, user *models.User, token string) error
}

// LogNotifier writes the token to the server log instead of sending it.
// Only suitable for development.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notify")}
}

func (n *LogNotifier) SendResetToken(ctx context.Context, user *models.User, token string) error {
	n.logger.Warn(ctx, "password reset token issued (log delivery, not for production)",
		"username", user.UserName, "email", user.Email, "token", token)
	return nil
}
