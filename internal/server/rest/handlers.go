package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/access"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	msgRegistered   = "User registered successfully"
	msgUpdated      = "User updated successfully"
	msgDeleted      = "User deleted successfully"
	msgResetSent    = "If your email is registered, you will receive a password reset token shortly."
	msgResetDone    = "Your password has been reset successfully."
	msgInvalidCreds = "Invalid credentials"
)

type handlers struct {
	accounts Accounts
	logger   logging.Logger
}

type registerRequest struct {
	UserName  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// updateRequest accepts a full user object; fields it does not list, such as
// role and username, are ignored.
type updateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Active    *bool   `json:"active"`
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		return err
	}

	_, err := h.accounts.Register(r.Context(), services.RegisterInput{
		UserName:  req.UserName,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}

	respondWithMessage(w, http.StatusCreated, msgRegistered)
	return nil
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		return err
	}

	token, err := h.accounts.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return newHTTPError(http.StatusUnauthorized, msgInvalidCreds, err)
		}
		return err
	}

	respondWithJSON(w, http.StatusOK, loginResponse{AccessToken: token})
	return nil
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFrom(r)
	if err != nil {
		return err
	}

	users, err := h.accounts.ListUsers(r.Context(), caller)
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, users)
	return nil
}

func (h *handlers) getUser(scope access.Scope) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		caller, err := callerFrom(r)
		if err != nil {
			return err
		}

		user, err := h.accounts.GetProfile(r.Context(), caller, scope, chi.URLParam(r, paramUsername))
		if err != nil {
			return err
		}

		respondWithJSON(w, http.StatusOK, user)
		return nil
	}
}

func (h *handlers) updateUser(scope access.Scope) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		caller, err := callerFrom(r)
		if err != nil {
			return err
		}

		var req updateRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			return err
		}

		_, err = h.accounts.UpdateProfile(r.Context(), caller, scope, chi.URLParam(r, paramUsername), services.ProfileUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Active:    req.Active,
		})
		if err != nil {
			return err
		}

		respondWithMessage(w, http.StatusOK, msgUpdated)
		return nil
	}
}

func (h *handlers) deleteUser(scope access.Scope) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		caller, err := callerFrom(r)
		if err != nil {
			return err
		}

		if err := h.accounts.DeleteProfile(r.Context(), caller, scope, chi.URLParam(r, paramUsername)); err != nil {
			return err
		}

		respondWithMessage(w, http.StatusOK, msgDeleted)
		return nil
	}
}

func (h *handlers) requestPasswordReset(w http.ResponseWriter, r *http.Request) error {
	var req resetRequestRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		return err
	}

	respondWithMessage(w, http.StatusOK, msgResetSent)
	return nil
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) error {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	return h.completeReset(w, r, req.Token, req.Password)
}

func (h *handlers) resetPasswordByPath(w http.ResponseWriter, r *http.Request) error {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	return h.completeReset(w, r, chi.URLParam(r, paramToken), req.Password)
}

func (h *handlers) completeReset(w http.ResponseWriter, r *http.Request, token, password string) error {
	if err := h.accounts.ResetPassword(r.Context(), token, password); err != nil {
		return err
	}

	respondWithMessage(w, http.StatusOK, msgResetDone)
	return nil
}

func callerFrom(r *http.Request) (access.Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return access.Identity{}, common.ErrTokenMissing
	}
	return id, nil
}
