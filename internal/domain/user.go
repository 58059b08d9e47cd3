package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Location     string    `json:"location"`
	Role         string    `json:"role"`
	AvatarKey    string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	if err := validateProfileFields(r.Name, r.LastName, r.Email, r.Location); err != nil {
		return err
	}
	if len(r.Password) < 8 {
		return errors.New("password must be 8 characters long")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// UpdateUserRequest carries the editable profile fields; the avatar is
// uploaded separately as a multipart file part.
type UpdateUserRequest struct {
	Name     string
	LastName string
	Email    string
	Location string
}

func (r UpdateUserRequest) Validate() error {
	return validateProfileFields(r.Name, r.LastName, r.Email, r.Location)
}

func validateProfileFields(name, lastName, email, location string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(lastName) == "" {
		return errors.New("last name is required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if strings.TrimSpace(location) == "" {
		return errors.New("location is required")
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email")
	}
	return nil
}
