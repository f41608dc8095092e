// Package session émet et vérifie les jetons d'identité (JWT HS256).
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carbon-track/models"
)

// DefaultTTL est la durée de validité d'un jeton.
const DefaultTTL = 24 * time.Hour

const issuer = "carbon-track"

// ErrInvalidToken couvre tout jeton absent, mal signé ou expiré.
var ErrInvalidToken = errors.New("session: invalid token")

// Claims porte l'identité de l'utilisateur connecté.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// User reconstruit l'utilisateur porté par le jeton.
func (c Claims) User() models.User {
	return models.User{Name: c.Name, Email: c.Email}
}

// Issuer signe et vérifie les jetons avec un secret partagé.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer crée un émetteur ; ttl <= 0 vaut DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signe un jeton pour l'utilisateur et retourne son expiration.
func (i *Issuer) Issue(u models.User) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Name:  u.Name,
		Email: u.Key(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Key(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse vérifie la signature et l'expiration du jeton.
func (i *Issuer) Parse(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
