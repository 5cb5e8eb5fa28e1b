package auth

import (
	"fmt"
	"sync"
)

// User is the login for one house.
type User struct {
	Username     string
	House        string
	PasswordHash string
}

// Principal is an authenticated caller.
type Principal struct {
	Username string
	House    string
}

// CanAccess reports whether the principal may act on houseName.
func (p Principal) CanAccess(houseName string) bool {
	return p.House != "" && p.House == houseName
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	ExpiresIn   int // seconds
	House       string
}

// Authenticator checks credentials against the configured users.
type Authenticator struct {
	users  map[string]User
	tokens *TokenIssuer

	// dummyHash is verified for unknown users so a miss costs the same
	// as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator indexes users by username. Users without a username
// or password hash cannot log in and are skipped.
func NewAuthenticator(users []User, tokens *TokenIssuer) *Authenticator {
	a := &Authenticator{users: make(map[string]User, len(users)), tokens: tokens}
	for _, u := range users {
		if u.Username == "" || u.PasswordHash == "" {
			continue
		}
		a.users[u.Username] = u
	}
	return a
}

// Verify checks a username and password.
func (a *Authenticator) Verify(username, password string) (Principal, error) {
	u, ok := a.users[username]
	if !ok {
		//nolint:errcheck // result discarded; timing only
		VerifyPassword(password, a.dummy())
		return Principal{}, ErrInvalidCredentials
	}

	match, err := VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return Principal{}, fmt.Errorf("verifying %s: %w", username, err)
	}
	if !match {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{Username: u.Username, House: u.House}, nil
}

// Login verifies credentials and issues an access token.
func (a *Authenticator) Login(username, password string) (*Session, error) {
	p, err := a.Verify(username, password)
	if err != nil {
		return nil, err
	}
	token, err := a.tokens.Issue(p.Username, p.House)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		ExpiresIn:   int(a.tokens.TTL().Seconds()),
		House:       p.House,
	}, nil
}

// ParseToken validates an access token and returns its principal.
func (a *Authenticator) ParseToken(token string) (Principal, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Username: claims.Subject, House: claims.House}, nil
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = HashPassword("tartanhome-dummy") //nolint:errcheck // falls back to a parse error
	})
	return a.dummyHash
}
