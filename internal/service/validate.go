package service

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"blog-server/internal/apperr"
	"blog-server/internal/auth"
)

const (
	minPasswordLen = 6
	minUsernameLen = 3
	maxUsernameLen = 20
)

const (
	msgAllFieldsRequired  = "All fields are required."
	msgInvalidEmail       = "Invalid email format"
	msgPasswordTooShort   = "Password must be at least 6 characters"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgUsernameLength     = "Username must be between 3 and 20 characters"
	msgUsernameSpaces     = "Username cannot contain spaces"
	msgUsernameLowercase  = "Username must be lowercase. Please enter your username in all lowercase letters."
	msgEmailInUse         = "Email already in use."
	msgUsernameInUse      = "Username already in use."
	msgLoginFieldsMissing = "Please provide email and password."
	msgUserNotFoundLogin  = "User not found."
	msgInvalidCredentials = "Invalid credentials."
	msgUserNotFound       = "User not found"
	msgNotAllowedUpdate   = "You are not allowed to update this user"
	msgNotAllowedDelete   = "You can only delete your own account"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func requireAll(msg string, values ...string) error {
	for _, value := range values {
		if err := validation.Validate(strings.TrimSpace(value), validation.Required); err != nil {
			return apperr.Validation(msg)
		}
	}
	return nil
}

func validateEmail(email string) error {
	if err := validation.Validate(email, validation.Match(emailPattern)); err != nil {
		return apperr.Validation(msgInvalidEmail)
	}
	return nil
}

func validatePassword(password string) error {
	if err := validation.Validate(password, validation.Length(minPasswordLen, 0)); err != nil {
		return apperr.Validation(msgPasswordTooShort)
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperr.Validation(msgPasswordTooLong)
	}
	return nil
}

func validateUsername(username string) error {
	if err := validation.Validate(username, validation.Length(minUsernameLen, maxUsernameLen)); err != nil {
		return apperr.Validation(msgUsernameLength)
	}
	if strings.ContainsAny(username, " \t\n") {
		return apperr.Validation(msgUsernameSpaces)
	}
	if username != strings.ToLower(username) {
		return apperr.Validation(msgUsernameLowercase)
	}
	return nil
}
