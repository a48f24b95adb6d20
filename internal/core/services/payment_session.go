package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fma-academy/registration-service/internal/core/domain"
)

// PaymentClaims bind a redirect flow to the user and amount it was issued
// for.
type PaymentClaims struct {
	Plan        domain.BillingPlan `json:"plan"`
	AmountMinor int64              `json:"amount"`
	jwt.RegisteredClaims
}

// SessionSigner mints and verifies the session tokens handed to the payment
// provider with each redirect flow.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionSigner(secret []byte, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secret: secret, ttl: ttl, now: time.Now}
}

func (s *SessionSigner) Sign(userID string, plan domain.BillingPlan, amount int64) (string, error) {
	now := s.now()
	claims := PaymentClaims{
		Plan:        plan,
		AmountMinor: amount,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a token and checks that it was issued for userID.
func (s *SessionSigner) Verify(tokenString, userID string) (*PaymentClaims, error) {
	claims := &PaymentClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: payment session: %v", domain.ErrInvalidInput, err)
	}
	if claims.Subject != userID {
		return nil, fmt.Errorf("%w: payment session was issued for another user", domain.ErrInvalidInput)
	}
	return claims, nil
}
