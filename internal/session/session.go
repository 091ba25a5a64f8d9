// Package session owns the storefront's application context: who is
// signed in, their bearer credential, and the small pieces of state that
// must survive a full-page handoff to the payment gateway. Everything
// durable lives in redis, nothing in process memory alone.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("bearer token expired")

// Session is the explicit, passed-down application context. It is
// initialized from durable storage at startup or sign-in and torn down on
// logout.
type Session struct {
	AccountID int64  `json:"account_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	Role      string `json:"role"`
}

// FromToken derives a session identity from a bearer token's claims.
// The signature is the auth collaborator's to verify; here only identity
// and expiry are read, so a dead token is rejected before any network
// call is wasted on it.
func FromToken(token string) (*Session, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse bearer token: %w", err)
	}
	claims := parsed.Claims

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if time.Now().After(exp.Time) {
			return nil, ErrTokenExpired
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("bearer token has no subject")
	}
	accountID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bearer token subject %q is not an account id", sub)
	}

	sess := &Session{AccountID: accountID, Token: token}
	if mc, ok := claims.(jwt.MapClaims); ok {
		if email, ok := mc["email"].(string); ok {
			sess.Email = email
		}
		if role, ok := mc["role"].(string); ok {
			sess.Role = role
		}
	}
	return sess, nil
}
