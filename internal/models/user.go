package models

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/uuid"
)

// DefaultAvatar is used when a user registers without one.
const DefaultAvatar = "default_avatar.png"

const (
	MinPasswordLength = 6
	MinPhoneLength    = 8
)

// PasswordCost is the bcrypt cost used for new hashes.
var PasswordCost = bcrypt.DefaultCost

// User represents an account holder.
type User struct {
	ID           string
	Email        string
	Phone        string
	PasswordHash string
	Nickname     string
	Avatar       string
	CreatedAt    Timestamp
}

// UserRecord is the persisted form of a User.
type UserRecord struct {
	ID           string `json:"user_id"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"password_hash"`
	Nickname     string `json:"nickname"`
	Avatar       string `json:"avatar_path"`
	CreatedAt    string `json:"created_at"`
}

// NewUser validates the fields and hashes the password.
func NewUser(email, phone, password, nickname, avatar string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Nickname:     nickname,
		Avatar:       avatar,
		CreatedAt:    Now(),
	}, nil
}

// VerifyPassword compares password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdatePassword replaces the hash after checking the old password.
func (u *User) UpdatePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return apperrors.WithMessage(apperrors.ErrWrongPassword, "Old password is incorrect")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// UpdateProfile applies each non-empty field. A new phone must still be valid.
func (u *User) UpdateProfile(nickname, avatar, phone string) error {
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if nickname != "" {
		u.Nickname = nickname
	}
	if avatar != "" {
		u.Avatar = avatar
	}
	if phone != "" {
		u.Phone = phone
	}
	return nil
}

// Record returns the persisted form of u.
func (u *User) Record() UserRecord {
	return UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Nickname:     u.Nickname,
		Avatar:       u.Avatar,
		CreatedAt:    u.CreatedAt.String(),
	}
}

// UserFromRecord rebuilds a User without re-hashing its password.
func UserFromRecord(r UserRecord) (*User, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("user record without id")
	}
	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	return &User{
		ID:           r.ID,
		Email:        r.Email,
		Phone:        r.Phone,
		PasswordHash: r.PasswordHash,
		Nickname:     r.Nickname,
		Avatar:       r.Avatar,
		CreatedAt:    created,
	}, nil
}

func validateEmail(email string) error {
	if !strings.Contains(email, "@") || len(email) <= 3 {
		return apperrors.WithMessage(apperrors.ErrValidation, "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) < MinPhoneLength {
		return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("Phone number must be at least %d characters", MinPhoneLength))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrValidation, err)
	}
	return string(hash), nil
}
