// Package verification holds registrations that are waiting for the user to
// confirm their email address. Entries live in memory only: a process restart
// drops them and the affected users must register again.
package verification

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// CodeTTL is how long an issued verification code stays valid.
	CodeTTL = 15 * time.Minute
	// SweepInterval is how often expired entries are reclaimed in the background.
	SweepInterval = 5 * time.Minute
)

var (
	ErrNoPending   = errors.New("no pending verification for this email")
	ErrCodeExpired = errors.New("verification code expired")
	ErrCodeInvalid = errors.New("invalid verification code")
)

// Signup is the registration payload held until the email is confirmed.
// The password is still raw here; it is hashed only when the confirmed
// user record is created.
type Signup struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

type pendingEntry struct {
	signup    Signup
	code      string
	createdAt time.Time
}

// Store maps a lower-cased email to at most one pending signup. All methods
// are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	pending map[string]pendingEntry

	ttl        time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore starts the background sweeper; callers must Close the store on
// shutdown to release it.
func NewStore() *Store {
	return newStore(CodeTTL, SweepInterval)
}

func newStore(ttl, sweepEvery time.Duration) *Store {
	s := &Store{
		pending:    make(map[string]pendingEntry),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweeper. Idempotent.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// GenerateCode returns a fresh 6-character uppercase hex code.
func GenerateCode() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the platform entropy source is broken
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

// Put records a pending signup for the email, replacing any existing entry.
// Last write wins: registering again before verifying silently invalidates
// the previous code. Returns the newly issued code.
func (s *Store) Put(email string, signup Signup) string {
	code := GenerateCode()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[normalizeEmail(email)] = pendingEntry{
		signup:    signup,
		code:      code,
		createdAt: s.now(),
	}
	return code
}

// Get returns the pending signup without mutating it.
func (s *Store) Get(email string) (Signup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[normalizeEmail(email)]
	if !ok {
		return Signup{}, false
	}
	return entry.signup, true
}

// Remove deletes the pending signup if present.
func (s *Store) Remove(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, normalizeEmail(email))
}

// Verify checks the code against the pending entry for the email. A match
// returns the stored payload but does not consume the entry; the caller
// removes it after the confirmed user record is persisted, so verification
// can be retried if persistence fails. A wrong code leaves the entry intact
// for retry. An expired entry is removed immediately.
func (s *Store) Verify(email, inputCode string) (Signup, error) {
	key := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[key]
	if !ok {
		return Signup{}, ErrNoPending
	}

	if s.now().After(entry.createdAt.Add(s.ttl)) {
		delete(s.pending, key)
		return Signup{}, ErrCodeExpired
	}

	if !strings.EqualFold(entry.code, inputCode) {
		return Signup{}, ErrCodeInvalid
	}

	return entry.signup, nil
}

// Stats reports the pending entries, for the debug endpoint.
type Stats struct {
	TotalPending int      `json:"totalPending"`
	Emails       []string `json:"emails"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	emails := make([]string, 0, len(s.pending))
	for email := range s.pending {
		emails = append(emails, email)
	}
	return Stats{TotalPending: len(s.pending), Emails: emails}
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep is a liveness aid only; Verify re-checks expiry on the read path so
// a lagging sweep never causes a stale code to be accepted.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for email, entry := range s.pending {
		if now.After(entry.createdAt.Add(s.ttl)) {
			delete(s.pending, email)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
