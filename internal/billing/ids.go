package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Allocator hands out sequential document numbers from counters kept in a
// KV. Concurrent allocators on the same key race; the last write wins.
type Allocator struct {
	kv KV
}

func NewAllocator(kv KV) *Allocator {
	return &Allocator{kv: kv}
}

// AllocateNext increments the counter at counterKey and returns prefix
// followed by the new value padded to three digits. A missing or
// unparseable counter counts as zero. Values above 999 simply widen.
func (a *Allocator) AllocateNext(prefix, counterKey string) (DocumentID, error) {
	current, err := a.current(counterKey)
	if err != nil {
		return "", err
	}
	next := current + 1
	if err := a.kv.Set(counterKey, strconv.Itoa(next)); err != nil {
		return "", fmt.Errorf("%w: store counter %q: %v", ErrPersistenceUnavailable, counterKey, err)
	}
	return DocumentID(fmt.Sprintf("%s%03d", prefix, next)), nil
}

// Next allocates the next number for kind.
func (a *Allocator) Next(kind Kind) (DocumentID, error) {
	if !kind.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return a.AllocateNext(kind.Prefix(), kind.CounterKey())
}

// ResetCounter drops the counter so numbering restarts at 001. Numbers
// issued before the reset will be issued again.
func (a *Allocator) ResetCounter(counterKey string) error {
	if err := a.kv.Remove(counterKey); err != nil {
		return fmt.Errorf("%w: reset counter %q: %v", ErrPersistenceUnavailable, counterKey, err)
	}
	return nil
}

func (a *Allocator) current(counterKey string) (int, error) {
	raw, ok, err := a.kv.Get(counterKey)
	if err != nil {
		return 0, fmt.Errorf("%w: read counter %q: %v", ErrPersistenceUnavailable, counterKey, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		log.Warn().Str("key", counterKey).Str("value", raw).Msg("unparseable counter, starting from zero")
		return 0, nil
	}
	return n, nil
}
