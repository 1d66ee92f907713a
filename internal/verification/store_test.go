package verification

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func newTestStore() *Store {
	// Long sweep interval so only the read path drives expiry in tests
	s := newStore(CodeTTL, time.Hour)
	return s
}

func TestPut_OverwritesPreviousEntry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	email := "Someone@Example.com"
	first := s.Put(email, Signup{FirstName: "First"})
	second := s.Put(email, Signup{FirstName: "Second"})

	if stats := s.Stats(); stats.TotalPending != 1 {
		t.Fatalf("expected 1 pending entry, got %d", stats.TotalPending)
	}

	// Old code is invalidated unless both draws happened to collide
	if first != second {
		if _, err := s.Verify(email, first); !errors.Is(err, ErrCodeInvalid) {
			t.Fatalf("expected ErrCodeInvalid for stale code, got %v", err)
		}
	}

	signup, err := s.Verify(email, second)
	if err != nil {
		t.Fatalf("Verify with fresh code failed: %v", err)
	}
	if signup.FirstName != "Second" {
		t.Fatalf("expected latest payload, got %q", signup.FirstName)
	}
}

func TestVerify_ReturnsStoredPayload(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	code := s.Put("cook@example.com", Signup{
		Email:     "cook@example.com",
		FirstName: "Ana",
		LastName:  "Arroyo",
		Role:      "user",
	})

	signup, err := s.Verify("cook@example.com", code)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if signup.FirstName != "Ana" || signup.LastName != "Arroyo" {
		t.Fatalf("unexpected payload: %+v", signup)
	}
}

func TestVerify_CaseInsensitiveCodeAndEmail(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	code := s.Put("MiXeD@Example.com", Signup{FirstName: "Ana"})

	if _, err := s.Verify("mixed@example.com", code); err != nil {
		t.Fatalf("lower-cased email lookup failed: %v", err)
	}

	lower := []byte(code)
	for i := range lower {
		if lower[i] >= 'A' && lower[i] <= 'F' {
			lower[i] += 'a' - 'A'
		}
	}
	if _, err := s.Verify("mixed@example.com", string(lower)); err != nil {
		t.Fatalf("lower-cased code rejected: %v", err)
	}
}

func TestVerify_ExpiredCodeRemovesEntry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	code := s.Put("late@example.com", Signup{})

	s.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	if _, err := s.Verify("late@example.com", code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}

	// Entry is gone; a second attempt reports no pending verification
	if _, err := s.Verify("late@example.com", code); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending after expiry removal, got %v", err)
	}
}

func TestVerify_WrongCodeAllowsRetry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	code := s.Put("retry@example.com", Signup{FirstName: "Ana"})

	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	if _, err := s.Verify("retry@example.com", wrong); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}

	if _, err := s.Verify("retry@example.com", code); err != nil {
		t.Fatalf("correct code should still succeed after a mismatch: %v", err)
	}
}

func TestVerify_DoesNotConsumeEntry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	code := s.Put("twice@example.com", Signup{})

	if _, err := s.Verify("twice@example.com", code); err != nil {
		t.Fatalf("first Verify failed: %v", err)
	}
	if _, err := s.Verify("twice@example.com", code); err != nil {
		t.Fatalf("second Verify failed, entry was consumed: %v", err)
	}

	s.Remove("twice@example.com")
	if _, err := s.Verify("twice@example.com", code); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending after Remove, got %v", err)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Put("gone@example.com", Signup{})
	s.Remove("gone@example.com")
	s.Remove("gone@example.com") // no-op

	if _, ok := s.Get("gone@example.com"); ok {
		t.Fatal("entry should be removed")
	}
}

func TestSweep_RemovesOnlyExpiredEntries(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Put("old@example.com", Signup{})

	s.now = func() time.Time { return base.Add(10 * time.Minute) }
	s.Put("fresh@example.com", Signup{})

	s.now = func() time.Time { return base.Add(16 * time.Minute) }
	s.sweep()

	if _, ok := s.Get("old@example.com"); ok {
		t.Fatal("expired entry survived the sweep")
	}
	if _, ok := s.Get("fresh@example.com"); !ok {
		t.Fatal("fresh entry was swept")
	}
}

func TestGenerateCode_Format(t *testing.T) {
	format := regexp.MustCompile(`^[0-9A-F]{6}$`)
	for i := 0; i < 100; i++ {
		code := GenerateCode()
		if !format.MatchString(code) {
			t.Fatalf("code %q does not match ^[0-9A-F]{6}$", code)
		}
	}
}
