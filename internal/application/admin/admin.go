package admin

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("admin: invalid credentials")
	ErrForbidden          = errors.New("admin: forbidden")
)

// Authenticator checks the single shared admin identity. It is a gate, not
// an account system: one username, one password, one key.
type Authenticator struct {
	username []byte
	password []byte
	key      []byte
}

func NewAuthenticator(username, password, key string) *Authenticator {
	return &Authenticator{
		username: []byte(username),
		password: []byte(password),
		key:      []byte(key),
	}
}

// Login returns the admin key when both credentials match.
func (a *Authenticator) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), a.username)
	passOK := subtle.ConstantTimeCompare([]byte(password), a.password)
	if userOK&passOK != 1 {
		return "", ErrInvalidCredentials
	}
	return string(a.key), nil
}

// CheckKey validates the x-admin-key header value. An unset key on the
// server side rejects everything.
func (a *Authenticator) CheckKey(key string) error {
	if len(a.key) == 0 || subtle.ConstantTimeCompare([]byte(key), a.key) != 1 {
		return ErrForbidden
	}
	return nil
}
