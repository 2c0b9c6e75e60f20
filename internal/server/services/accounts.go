// Package services holds the account operations shared by every transport.
// Services return errors from internal/common; mapping them to status codes
// is left to the caller.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/access"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notify"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
)

// deliveryTimeout bounds a single background reset-token delivery.
const deliveryTimeout = 30 * time.Second

// RegisterInput is a new account as submitted by the client.
type RegisterInput struct {
	UserName  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// ProfileUpdate lists the fields a caller may change. Nil fields are kept.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Active    *bool
}

// AccountService implements registration, login, profile management and
// password reset on top of a RepositoryManager.
type AccountService struct {
	db          dbx.DBTX
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	hasher      *credentials.Hasher
	tokens      *auth.TokenService
	notifier    notify.Notifier
	logger      logging.Logger

	deliveries sync.WaitGroup
}

// NewAccountService wires the service. db is used outside transactions, tx
// runs the multi-step password reset.
func NewAccountService(
	db dbx.DBTX,
	tx dbx.Transactor,
	m repomanager.RepositoryManager,
	hasher *credentials.Hasher,
	tokens *auth.TokenService,
	notifier notify.Notifier,
	l logging.Logger,
) *AccountService {
	return &AccountService{
		db:          db,
		tx:          tx,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    notifier,
		logger:      l.With("module", "accounts"),
	}
}

// Register validates in, hashes the password and stores a new active account.
// An empty role defaults to USER.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateUsername(in.UserName); err != nil {
		return nil, err
	}
	if err := validateName("first_name", in.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("last_name", in.LastName); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, common.Validationf("role %q is not one of USER, ADMIN", in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:     in.UserName,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "username", user.UserName, "role", user.Role)
	return user, nil
}

// Login checks username and password and returns a session token.
// Every credential failure yields the same ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.DummyVerify(password)
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: error loading user: %v", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrorUnauthorized
	}
	if !user.Active {
		s.logger.Info(ctx, "login refused for inactive account", "username", username)
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.IssueSessionToken(user.UserName)
	if err != nil {
		return "", fmt.Errorf("%w: error issuing token: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// Authenticate resolves a session token into the caller's identity. The role
// is read from the store, not the token, so role changes apply immediately.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*access.Identity, error) {
	subject, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("%w: error loading caller: %v", common.ErrorInternal, err)
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: account is inactive", common.ErrorUnauthorized)
	}

	return &access.Identity{UserName: user.UserName, Role: user.Role}, nil
}

// ListUsers returns every account. Only admins may call it.
func (s *AccountService) ListUsers(ctx context.Context, caller access.Identity) ([]*models.User, error) {
	if !access.CanListUsers(caller.Role) {
		return nil, fmt.Errorf("%w: listing users requires %s", common.ErrorForbidden, models.RoleAdmin)
	}

	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing users: %v", common.ErrorInternal, err)
	}
	return list, nil
}

// GetProfile returns the account named username if scope allows caller to see it.
func (s *AccountService) GetProfile(ctx context.Context, caller access.Identity, scope access.Scope, username string) (*models.User, error) {
	if err := access.Authorize(scope, caller, username); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		return nil, repoError("error loading user", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of upd to the account named username.
func (s *AccountService) UpdateProfile(ctx context.Context, caller access.Identity, scope access.Scope, username string, upd ProfileUpdate) (*models.User, error) {
	if err := access.Authorize(scope, caller, username); err != nil {
		return nil, err
	}

	patch, err := buildPatch(upd)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).Update(ctx, username, patch)
	if err != nil {
		return nil, repoError("error updating user", err)
	}

	s.logger.Info(ctx, "user updated", "username", username, "by", caller.UserName)
	return user, nil
}

// DeleteProfile removes the account named username.
func (s *AccountService) DeleteProfile(ctx context.Context, caller access.Identity, scope access.Scope, username string) error {
	if err := access.Authorize(scope, caller, username); err != nil {
		return err
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, username); err != nil {
		return repoError("error deleting user", err)
	}

	s.logger.Info(ctx, "user deleted", "username", username, "by", caller.UserName)
	return nil
}

// RequestPasswordReset issues a reset token for the account registered under
// email and hands it to the notifier in the background. The result and the
// response time are the same whether or not such an account exists.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("%w: error loading user: %v", common.ErrorInternal, err)
	}

	token, err := s.tokens.IssueResetToken(user.UserName, auth.Fingerprint(user.PasswordHash))
	if err != nil {
		return fmt.Errorf("%w: error issuing reset token: %v", common.ErrorInternal, err)
	}

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()

		if err := s.notifier.SendResetToken(dctx, user, token); err != nil {
			s.logger.Error(dctx, "failed to deliver reset token", "username", user.UserName, "error", err)
		}
	}()
	return nil
}

// WaitDeliveries blocks until every pending reset-token delivery has finished.
func (s *AccountService) WaitDeliveries() {
	s.deliveries.Wait()
}

// ResetPassword redeems token and stores password as the new credential.
// A token stops working as soon as the password it was issued against changes.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return common.ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.LockByUsername(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidResetToken
			}
			return err
		}

		current := auth.Fingerprint(user.PasswordHash)
		if subtle.ConstantTimeCompare([]byte(current), []byte(claims.Fingerprint)) != 1 {
			return common.ErrInvalidResetToken
		}

		_, err = repo.Update(ctx, user.UserName, models.UserPatch{PasswordHash: &hash})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidResetToken) {
			return err
		}
		return fmt.Errorf("%w: error resetting password: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "password reset", "username", claims.Subject)
	return nil
}

func buildPatch(upd ProfileUpdate) (models.UserPatch, error) {
	var patch models.UserPatch

	if upd.FirstName != nil {
		if err := validateName("first_name", *upd.FirstName); err != nil {
			return patch, err
		}
		v := strings.TrimSpace(*upd.FirstName)
		patch.FirstName = &v
	}
	if upd.LastName != nil {
		if err := validateName("last_name", *upd.LastName); err != nil {
			return patch, err
		}
		v := strings.TrimSpace(*upd.LastName)
		patch.LastName = &v
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return patch, err
		}
		patch.Email = &email
	}
	patch.Active = upd.Active

	return patch, nil
}

// repoError passes NotFound and AlreadyExists through and reports anything
// else as internal.
func repoError(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
