package docserver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password an account may be created with.
const MinPasswordLength = 6

const tokenIssuer = "classnotesd"

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Claims are carried by ID tokens. Subject is the account uid.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is a signed-in account and its ID token.
type Session struct {
	User      docstore.AuthUser
	Token     string
	ExpiresAt time.Time
}

// Accounts manages email/password accounts and their ID tokens.
type Accounts struct {
	db     *store.DB
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewAccounts creates the account service. Tokens are HS256-signed with secret.
func NewAccounts(db *store.DB, secret []byte, ttl time.Duration) *Accounts {
	return &Accounts{
		db:     db,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// SignUp creates an account and returns its first session.
func (a *Accounts) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: email %q", docstore.ErrInvalidArgument, email)
	}
	if len(password) < MinPasswordLength {
		return nil, docstore.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &store.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    a.now().UnixMilli(),
	}
	if err := a.db.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, docstore.ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return a.issue(u)
}

// SignIn checks credentials and returns a new session.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.db.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, docstore.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, docstore.ErrInvalidCredentials
	}
	return a.issue(u)
}

// UpdateProfile sets the display name of uid and returns the updated user.
func (a *Accounts) UpdateProfile(ctx context.Context, uid, displayName string) (*docstore.AuthUser, error) {
	ok, err := a.db.SetDisplayName(ctx, uid, strings.TrimSpace(displayName))
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", uid, docstore.ErrNotFound)
	}
	return a.Lookup(ctx, uid)
}

// Lookup returns the account with the given uid.
func (a *Accounts) Lookup(ctx context.Context, uid string) (*docstore.AuthUser, error) {
	u, err := a.db.UserByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", uid, docstore.ErrNotFound)
	}
	return authUser(u), nil
}

// Verify parses and validates an ID token.
func (a *Accounts) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docstore.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", docstore.ErrUnauthenticated)
	}
	return claims, nil
}

func (a *Accounts) issue(u *store.User) (*Session, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{User: *authUser(u), Token: token, ExpiresAt: expires}, nil
}

func authUser(u *store.User) *docstore.AuthUser {
	return &docstore.AuthUser{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
}
