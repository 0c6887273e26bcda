package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = time.Hour
	bcryptCost       = 12
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var (
	// ErrAuthDisabled is returned when no admin password is configured
	ErrAuthDisabled = errors.New("admin login disabled")
	// ErrBadPassword is returned for a wrong admin password
	ErrBadPassword = errors.New("incorrect password")
	// ErrRateLimited is returned after too many login attempts
	ErrRateLimited = errors.New("too many login attempts, try again later")
)

// AdminAuth checks the admin password for chat logins and issues tokens
// for the HTTP admin endpoint
type AdminAuth struct {
	hash      []byte
	jwtSecret []byte

	// Rate limiting for login attempts (address -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAdminAuth hashes password. An empty password disables admin logins.
func NewAdminAuth(password string, db *DB) (*AdminAuth, error) {
	a := &AdminAuth{
		jwtSecret: loadOrCreateSecret(db),
		rateMap:   make(map[string]*rateEntry),
	}
	if password == "" {
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	a.hash = hash
	return a, nil
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("auth: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Enabled reports whether an admin password is set
func (a *AdminAuth) Enabled() bool {
	return len(a.hash) > 0
}

// CheckPassword reports whether password is the admin password. Attempts
// are rate limited per key.
func (a *AdminAuth) CheckPassword(key, password string) bool {
	return a.verify(key, password) == nil
}

func (a *AdminAuth) verify(key, password string) error {
	if !a.Enabled() {
		return ErrAuthDisabled
	}
	if !a.checkRate(key) {
		return ErrRateLimited
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// Login checks the password and returns a token for the HTTP admin endpoint
func (a *AdminAuth) Login(password, ip string) (string, error) {
	if err := a.verify(ip, password); err != nil {
		return "", err
	}
	return a.generateToken(ip)
}

// ValidateToken validates a JWT and returns the address it was issued to
func (a *AdminAuth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func (a *AdminAuth) generateToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": "admin",
		"exp":  time.Now().Add(jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *AdminAuth) checkRate(key string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[key]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[key] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}
