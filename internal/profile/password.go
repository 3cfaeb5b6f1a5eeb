package profile

import (
	"context"
	"fmt"
	"unicode"

	"github.com/ArponRoy7/codemate-go/internal/api"
)

// MinPasswordLen is the minimum accepted length for a new password.
const MinPasswordLen = 8

// ValidateNewPassword enforces the strength rule for a new password: at
// least MinPasswordLen characters with an upper-case letter, a lower-case
// letter, a digit and a symbol.
func ValidateNewPassword(pw string) error {
	if len(pw) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return fmt.Errorf("password needs upper and lower case letters, a digit and a symbol")
	}
	return nil
}

// ChangePassword validates locally and then asks the server to rotate the
// password. Validation failures never reach the network.
func ChangePassword(ctx context.Context, client *api.Client, current, next, confirm string) error {
	if current == "" {
		return fmt.Errorf("current password is required")
	}
	if err := ValidateNewPassword(next); err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("password confirmation does not match")
	}
	if err := client.ChangePassword(ctx, current, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
