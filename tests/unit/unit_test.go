package unit

import (
	"strings"
	"testing"

	"app/internal/usecase"
)

// =====================
// 共通ヘルパー
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected HTTPError(status=%d), got nil", want)
	}
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %T: %v", err, err)
	}
	if he.Status != want {
		t.Fatalf("status=%d want=%d message=%q", he.Status, want, he.Message)
	}
}
