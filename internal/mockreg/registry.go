// SPDX-License-Identifier: GPL-3.0-or-later

// Package mockreg keeps an in-memory registry of phone numbers that should be
// reported as connected without querying the switch. Entries expire after a
// configurable TTL and are swept lazily on access.
package mockreg

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dialtonehq/callcheck/internal/phonenum"
)

const maxRangeSize = 10000

// Entry describes an active mock connection.
type Entry struct {
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time

	now func() time.Time
}

func New(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Put registers the numbers a token expands to and returns their match keys.
// A token is either a single number in any human format or an inclusive range
// "start:end" of equal-width digit strings ("0100:0103"). Numbers are keyed by
// their last digits, so later lookups match regardless of formatting.
func (r *Registry) Put(token string) ([]string, error) {
	numbers, err := expandToken(token)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()

	keys := make([]string, 0, len(numbers))
	for _, number := range numbers {
		key := phonenum.LastDigits(number, phonenum.MatchDigits)
		r.entries[key] = r.now()
		keys = append(keys, key)
	}

	return keys, nil
}

// Get reports whether an unexpired entry matches the number and returns its key.
func (r *Registry) Get(number string) (string, bool) {
	key := phonenum.LastDigits(number, phonenum.MatchDigits)
	if key == "" {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()

	if _, ok := r.entries[key]; !ok {
		return "", false
	}

	return key, true
}

// Remove deletes the entry matching the number, reporting whether one existed.
func (r *Registry) Remove(number string) bool {
	key := phonenum.LastDigits(number, phonenum.MatchDigits)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		return false
	}

	delete(r.entries, key)

	return true
}

// Clear drops all unexpired entries and returns how many were dropped.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()

	n := len(r.entries)
	r.entries = make(map[string]time.Time)

	return n
}

// Status returns the unexpired entries sorted by number.
func (r *Registry) Status() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()

	entries := make([]Entry, 0, len(r.entries))
	for key, created := range r.entries {
		entries = append(entries, Entry{
			Number:    key,
			CreatedAt: created.UTC(),
			ExpiresAt: created.Add(r.ttl).UTC(),
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Number, b.Number) })

	return entries
}

func (r *Registry) SetTTL(ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttl = ttl
}

func (r *Registry) TTL() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl
}

func (r *Registry) expireLocked() {
	now := r.now()
	for key, created := range r.entries {
		if now.Sub(created) >= r.ttl {
			delete(r.entries, key)
		}
	}
}

func expandToken(token string) ([]string, error) {
	start, end, found := strings.Cut(token, ":")
	if !found {
		return expandSingle(token)
	}

	lo := phonenum.Normalize(start)
	hi := phonenum.Normalize(end)

	// Ranges only make sense between equal-width digit strings. Anything
	// else is treated as one oddly formatted number.
	if lo == "" || hi == "" || len(lo) != len(hi) {
		return expandSingle(token)
	}

	loN, errLo := strconv.ParseUint(lo, 10, 64)
	hiN, errHi := strconv.ParseUint(hi, 10, 64)
	if errLo != nil || errHi != nil {
		return expandSingle(token)
	}

	if loN > hiN {
		return []string{}, nil
	}
	if hiN-loN >= maxRangeSize {
		return nil, fmt.Errorf("range '%s' expands to more than %d numbers", token, maxRangeSize)
	}

	numbers := make([]string, 0, hiN-loN+1)
	for n := loN; n <= hiN; n++ {
		numbers = append(numbers, fmt.Sprintf("%0*d", len(lo), n))
	}

	return numbers, nil
}

func expandSingle(token string) ([]string, error) {
	number := phonenum.Normalize(token)
	if number == "" {
		return nil, fmt.Errorf("number '%s' contains no digits", token)
	}
	return []string{number}, nil
}
