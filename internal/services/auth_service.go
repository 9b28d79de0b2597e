package services

import (
	"strings"
	"time"

	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
	"pocketledger/internal/validator"
)

// authService handles registration, login and profile changes.
type authService struct {
	store *database.Store
	audit AuditServicer
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(store *database.Store, audit AuditServicer) AuthServicer {
	return &authService{store: store, audit: audit}
}

// Register validates the input and persists a new user.
func (s *authService) Register(in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	if _, exists := s.store.GetUserByEmail(in.Email); exists {
		return nil, apperrors.ErrDuplicateEmail
	}

	user, err := models.NewUser(in.Email, in.Phone, in.Password, in.Nickname, in.Avatar)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	logger.Get().Infow("user registered", "user_id", user.ID)
	s.audit.Log(user.ID, "register", "user", user.ID, nil)
	return user, nil
}

// Login verifies the credentials and starts a session.
func (s *authService) Login(email, password string) (*Session, error) {
	email = normalizeEmail(email)
	user, ok := s.store.GetUserByEmail(email)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if !user.VerifyPassword(password) {
		logger.Get().Infow("login rejected", "user_id", user.ID)
		return nil, apperrors.ErrWrongPassword
	}

	logger.Get().Infow("user logged in", "user_id", user.ID)
	s.audit.Log(user.ID, "login", "user", user.ID, nil)
	return newSession(user.ID, user.Email), nil
}

// Logout ends the session.
func (s *authService) Logout(sess *Session) error {
	userID := sess.UserID()
	if !sess.end() {
		return apperrors.ErrNotLoggedIn
	}
	s.audit.Log(userID, "logout", "user", userID, map[string]any{
		"duration": time.Since(sess.StartedAt()).String(),
	})
	return nil
}

// CurrentUser returns the session's user.
func (s *authService) CurrentUser(sess *Session) (*models.User, error) {
	return activeUser(s.store, sess)
}

// ChangePassword replaces the password after verifying the old one.
func (s *authService) ChangePassword(sess *Session, oldPassword, newPassword string) error {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return err
	}
	if err := user.UpdatePassword(oldPassword, newPassword); err != nil {
		return err
	}
	if err := s.store.SaveUser(user); err != nil {
		return err
	}
	s.audit.Log(user.ID, "change_password", "user", user.ID, nil)
	return nil
}

// UpdateProfile applies the non-empty fields of in.
func (s *authService) UpdateProfile(sess *Session, in ProfileUpdate) (*models.User, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(in.Nickname, in.Avatar, in.Phone); err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "update_profile", "user", user.ID, map[string]any{
		"nickname": in.Nickname != "",
		"avatar":   in.Avatar != "",
		"phone":    in.Phone != "",
	})
	return user, nil
}

// DeleteAccount removes the user with all of its entries and budgets and
// ends the session.
func (s *authService) DeleteAccount(sess *Session) error {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return err
	}
	if _, err := s.store.DeleteUser(user.ID); err != nil {
		return err
	}
	sess.end()
	s.audit.Log(user.ID, "delete", "user", user.ID, nil)
	return nil
}

// activeUser resolves the session to its stored user.
func activeUser(store *database.Store, sess *Session) (*models.User, error) {
	userID := sess.UserID()
	if userID == "" {
		return nil, apperrors.ErrNotLoggedIn
	}
	user, ok := store.GetUserByID(userID)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
