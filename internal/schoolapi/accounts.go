package schoolapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to accounts created with AddUser.
const MinPasswordLength = 6

// Accounts checks and registers REST logins.
type Accounts struct {
	repo Repository
	cost int
}

func NewAccounts(repo Repository) *Accounts {
	return &Accounts{repo: repo, cost: bcrypt.DefaultCost}
}

// AddUser registers email with a bcrypt hash of password.
func (a *Accounts) AddUser(ctx context.Context, email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return a.repo.CreateAccount(ctx, email, hash)
}

// Check reports whether the credentials match a registered account.
func (a *Accounts) Check(ctx context.Context, email, password string) (bool, error) {
	acct, err := a.repo.AccountByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) == nil, nil
}
