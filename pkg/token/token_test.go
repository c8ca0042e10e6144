package token

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, 8*time.Hour, 720*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	return m
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	if _, err := NewManager("short", time.Hour, time.Hour); err == nil {
		t.Error("expected error for a secret shorter than 32 characters")
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignAdmin("registrar")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	claims, err := m.VerifyAdmin(signed)
	if err != nil {
		t.Fatalf("unexpected error verifying: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("expected role %q, got %q", RoleAdmin, claims.Role)
	}
	if claims.Subject != "registrar" {
		t.Errorf("expected subject 'registrar', got %q", claims.Subject)
	}
}

func TestStudentTokenRoundTrip(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignStudent("S1001", "Priya Nair", "Physics")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	claims, err := m.VerifyScan(signed)
	if err != nil {
		t.Fatalf("unexpected error verifying scan token: %v", err)
	}
	if claims.StudentID != "S1001" {
		t.Errorf("expected student_id S1001, got %q", claims.StudentID)
	}
	if claims.StudentName != "Priya Nair" || claims.Course != "Physics" {
		t.Errorf("unexpected identity claims: %+v", claims)
	}
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignAdmin("registrar")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := m.VerifyAdmin(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(strings.Repeat("z", 32), time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	signed, err := other.SignStudent("S1001", "Priya Nair", "Physics")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if _, err := m.VerifyStudent(signed); err == nil {
		t.Error("expected token signed with a different secret to be rejected")
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	m, err := NewManager(testSecret, -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	signed, err := m.SignAdmin("registrar")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if _, err := m.VerifyAdmin(signed); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestVerifyScan_RequiresStudentIdentity(t *testing.T) {
	m := newTestManager(t)

	// An admin token verifies as a generic HS256 token but carries no
	// student_id claim, so the gate must refuse it.
	signed, err := m.SignAdmin("registrar")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if _, err := m.VerifyScan(signed); err == nil {
		t.Error("expected scan verification to reject a token without student_id")
	}
}
