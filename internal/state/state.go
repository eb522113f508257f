// Package state implements the persistent state facade for the device:
// typed defaulting accessors over the durable map, session and credential
// state, device settings, and the lazily generated derived secrets.
//
// A Store must be obtained through Open. Using a zero-value or closed Store
// is a programming error and panics; it must never silently default.
package state

import (
	"log/slog"
	"time"

	"github.com/studykit/devicestate/internal/errs"
	"github.com/studykit/devicestate/internal/kvstore"
)

// DefaultAutoLogout is the auto-logout duration used when the stored
// seconds-before-auto-logout setting is absent.
const DefaultAutoLogout = 5 * time.Minute

// Options tunes a Store. The zero value is production behavior.
type Options struct {
	// Clock overrides the time source. Tests use this to advance past the
	// login expiration.
	Clock func() time.Time

	// AutoLogoutFallback replaces DefaultAutoLogout when the stored setting
	// is absent. Zero keeps the default.
	AutoLogoutFallback time.Duration
}

// Store is the typed facade over the durable map.
type Store struct {
	kv    *kvstore.Map
	clock func() time.Time

	autoLogoutFallback time.Duration
	ready              bool
}

// Open binds the facade to a durable map and performs an initial empty
// commit, proving the store is writable before any caller depends on it.
// Open is idempotent in effect: opening the same map twice yields two valid
// handles over the same state.
func Open(kv *kvstore.Map, opts Options) (*Store, error) {
	if kv == nil {
		return nil, errs.New(errs.InvalidArgument, "state: nil durable map")
	}
	if err := kv.Sync(); err != nil {
		return nil, err
	}

	s := &Store{
		kv:                 kv,
		clock:              opts.Clock,
		autoLogoutFallback: opts.AutoLogoutFallback,
		ready:              true,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.autoLogoutFallback <= 0 {
		s.autoLogoutFallback = DefaultAutoLogout
	}
	return s, nil
}

// Close detaches the facade. The underlying map is not closed here; its
// owner closes it. Any use after Close panics.
func (s *Store) Close() {
	s.mustReady()
	s.ready = false
}

// mustReady panics on use of an unopened or closed Store. Accessing state
// before initialization is an invariant violation, not a soft default.
func (s *Store) mustReady() {
	if s == nil || !s.ready {
		panic(errs.New(errs.InvariantViolation, "state store used before Open or after Close"))
	}
}

func (s *Store) now() time.Time {
	return s.clock()
}

// Bool returns the bool under key, or def when absent. Malformed stored
// text degrades to def with a warning; only I/O failures surface as errors.
func (s *Store) Bool(key string, def bool) (bool, error) {
	s.mustReady()
	v, ok, err := s.kv.GetBool(key)
	if errs.IsDecodeError(err) {
		slog.Warn("malformed bool setting, using default", "key", key, "error", err)
		return def, nil
	}
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetBool writes key with exactly one durable commit.
func (s *Store) SetBool(key string, value bool) error {
	s.mustReady()
	return s.kv.PutBool(key, value)
}

// String returns the string under key, or def when absent.
func (s *Store) String(key, def string) (string, error) {
	s.mustReady()
	v, ok, err := s.kv.GetString(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetString writes key with exactly one durable commit.
func (s *Store) SetString(key, value string) error {
	s.mustReady()
	return s.kv.PutString(key, value)
}

// Int returns the int under key, or def when absent.
func (s *Store) Int(key string, def int) (int, error) {
	s.mustReady()
	v, ok, err := s.kv.GetInt(key)
	if errs.IsDecodeError(err) {
		slog.Warn("malformed int setting, using default", "key", key, "error", err)
		return def, nil
	}
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetInt writes key with exactly one durable commit.
func (s *Store) SetInt(key string, value int) error {
	s.mustReady()
	return s.kv.PutInt(key, value)
}

// Int64 returns the int64 under key, or def when absent.
func (s *Store) Int64(key string, def int64) (int64, error) {
	s.mustReady()
	v, ok, err := s.kv.GetInt64(key)
	if errs.IsDecodeError(err) {
		slog.Warn("malformed int64 setting, using default", "key", key, "error", err)
		return def, nil
	}
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetInt64 writes key with exactly one durable commit.
func (s *Store) SetInt64(key string, value int64) error {
	s.mustReady()
	return s.kv.PutInt64(key, value)
}

// Float64 returns the float under key, or def when absent.
func (s *Store) Float64(key string, def float64) (float64, error) {
	s.mustReady()
	v, ok, err := s.kv.GetFloat64(key)
	if errs.IsDecodeError(err) {
		slog.Warn("malformed float setting, using default", "key", key, "error", err)
		return def, nil
	}
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetFloat64 writes key with exactly one durable commit.
func (s *Store) SetFloat64(key string, value float64) error {
	s.mustReady()
	return s.kv.PutFloat64(key, value)
}

// Has reports whether key is present.
func (s *Store) Has(key string) (bool, error) {
	s.mustReady()
	return s.kv.Has(key)
}

// Remove deletes key. Only the per-survey bookkeeping uses explicit removal.
func (s *Store) Remove(key string) error {
	s.mustReady()
	return s.kv.Delete(key)
}

// Keys lists stored keys with the given prefix.
func (s *Store) Keys(prefix string) ([]string, error) {
	s.mustReady()
	return s.kv.Keys(prefix)
}
