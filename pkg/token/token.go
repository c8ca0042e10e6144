// Package token is the signing/verification capability for bearer and
// gate-scan tokens. Callers deal in claims; the HS256 mechanics stay here.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingStudent = errors.New("token carries no student identity")
)

// AdminClaims assert a backoffice operator identity.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// StudentClaims assert a student identity. The same token serves both
// API auth and the gate scanner, so name and course ride along and are
// trusted as issued at login.
type StudentClaims struct {
	Role        string `json:"role"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Course      string `json:"course"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	adminTTL   time.Duration
	studentTTL time.Duration
}

func NewManager(secret string, adminTTL, studentTTL time.Duration) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 characters, got %d", len(secret))
	}
	return &Manager{
		secret:     []byte(secret),
		adminTTL:   adminTTL,
		studentTTL: studentTTL,
	}, nil
}

func (m *Manager) SignAdmin(username string) (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.adminTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return m.sign(claims)
}

func (m *Manager) SignStudent(studentID, studentName, course string) (string, error) {
	now := time.Now()
	claims := &StudentClaims{
		Role:        RoleStudent,
		StudentID:   studentID,
		StudentName: studentName,
		Course:      course,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   studentID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.studentTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return m.sign(claims)
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) VerifyAdmin(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) VerifyStudent(tokenString string) (*StudentClaims, error) {
	claims := &StudentClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyScan validates a token presented at the gate. Beyond signature
// and expiry it requires a student_id claim; the gate trusts no other
// source of identity.
func (m *Manager) VerifyScan(tokenString string) (*StudentClaims, error) {
	claims, err := m.VerifyStudent(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.StudentID == "" {
		return nil, ErrMissingStudent
	}
	return claims, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
