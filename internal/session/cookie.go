package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const cookieIssuer = "vendfleet-dashboard"

// CookieConfig holds the session cookie settings
type CookieConfig struct {
	Name   string
	Secret string
	Secure bool
}

// Codec signs session ids into cookie values
type Codec struct {
	cfg CookieConfig
}

// NewCodec creates a cookie codec
func NewCodec(cfg CookieConfig) *Codec {
	if cfg.Name == "" {
		cfg.Name = "vf_session"
	}
	return &Codec{cfg: cfg}
}

// Encode signs the session id
func (c *Codec) Encode(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  id,
		Issuer:   cookieIssuer,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns the session id
func (c *Codec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.cfg.Secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Issuer != cookieIssuer {
		return "", errors.New("invalid session cookie")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.Subject, nil
}

// Resolve returns the session id carried by the request, issuing a new one
// (and setting the cookie) when the cookie is missing or invalid.
func (c *Codec) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(c.cfg.Name); err == nil {
		if id, err := c.Decode(cookie.Value); err == nil {
			return id, nil
		}
	}

	id := NewID()
	if err := c.Set(w, id); err != nil {
		return "", err
	}
	return id, nil
}

// Set points the browser's cookie at the session id
func (c *Codec) Set(w http.ResponseWriter, id string) error {
	value, err := c.Encode(id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// NewID returns a fresh session id
func NewID() string {
	return uuid.New().String()
}
