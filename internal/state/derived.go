package state

import (
	"encoding/base64"

	"github.com/studykit/devicestate/internal/crypto"
	"github.com/studykit/devicestate/internal/errs"
)

// Derived secure values. Each is generated lazily on first access, persisted,
// and then returned unchanged for the lifetime of the installation. They must
// be unpredictable (hash anonymization, stable fuzz direction) yet constant,
// so generation never overwrites an existing value.
const (
	// SaltSize is the password-hash salt length in bytes.
	SaltSize = 64

	// Iteration count bounds, [MinHashIterations, MaxHashIterations).
	MinHashIterations = 900
	MaxHashIterations = 1100
)

// HashSalt returns the per-install password-hash salt, generating and
// persisting it on first access.
func (s *Store) HashSalt() ([]byte, error) {
	s.mustReady()
	encoded, ok, err := s.kv.GetString(keyHashSalt)
	if err != nil {
		return nil, err
	}
	if ok {
		salt, derr := base64.StdEncoding.DecodeString(encoded)
		if derr != nil {
			// Regenerating would invalidate the stored password hash, so a
			// corrupt salt is an error, not a degrade-to-empty.
			return nil, errs.Wrap(errs.DecodeError, "stored hash salt is not valid base64", derr)
		}
		return salt, nil
	}

	salt, err := crypto.NewSalt(SaltSize)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "generate hash salt", err)
	}
	if err := s.SetString(keyHashSalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashIterations returns the per-install PBKDF2 iteration count in
// [MinHashIterations, MaxHashIterations), generating it on first access.
// A stored 0 is treated as never generated; the range excludes 0, so a real
// value can never collide with that sentinel.
func (s *Store) HashIterations() (int, error) {
	iterations, err := s.Int(keyHashIterations, 0)
	if err != nil {
		return 0, err
	}
	if iterations != 0 {
		return iterations, nil
	}

	iterations, err = crypto.NewIterationCount(MinHashIterations, MaxHashIterations)
	if err != nil {
		return 0, errs.Wrap(errs.Internal, "generate hash iteration count", err)
	}
	if err := s.SetInt(keyHashIterations, iterations); err != nil {
		return 0, err
	}
	return iterations, nil
}

// UseGPSFuzzing reports whether location fuzzing is enabled for this study.
func (s *Store) UseGPSFuzzing() (bool, error) {
	return s.Bool(keyUseGPSFuzzing, false)
}

// SetUseGPSFuzzing toggles location fuzzing. Offsets already generated keep
// their values regardless of later changes to this flag.
func (s *Store) SetUseGPSFuzzing(v bool) error {
	return s.SetBool(keyUseGPSFuzzing, v)
}

// LatitudeOffset returns the fixed latitude perturbation. Generated the
// first time fuzzing is enabled and no offset exists: uniform in (0.2, 1.8),
// reflected to (-1, -0.2) when it overshoots 1, so the magnitude always lands
// in [0.2, 1.0]. Returns 0 while fuzzing is disabled and nothing is stored.
func (s *Store) LatitudeOffset() (float64, error) {
	return s.offset(keyLatitudeOffset, func(r float64) float64 {
		v := 0.2 + r*1.6
		if v > 1 {
			v = (v - 0.8) * -1
		}
		return v
	})
}

// LongitudeOffset returns the fixed longitude perturbation. Generated in
// (10, 350) and reflected to (-180, -10) when it overshoots 180, so the
// magnitude always lands in [10, 180].
func (s *Store) LongitudeOffset() (float64, error) {
	return s.offset(keyLongitudeOffset, func(r float64) float64 {
		v := 10 + r*340
		if v > 180 {
			v = (v - 170) * -1
		}
		return v
	})
}

// offset implements the shared lazy-generation rule: a stored non-zero value
// wins forever; absent-or-zero generates only while fuzzing is enabled.
func (s *Store) offset(key string, gen func(r float64) float64) (float64, error) {
	s.mustReady()
	stored, ok, err := s.kv.GetFloat64(key)
	if err != nil && !errs.IsDecodeError(err) {
		return 0, err
	}
	if ok && stored != 0 {
		return stored, nil
	}

	enabled, err := s.UseGPSFuzzing()
	if err != nil {
		return 0, err
	}
	if !enabled {
		return 0, nil
	}

	r, err := crypto.NewUnitFloat()
	if err != nil {
		return 0, errs.Wrap(errs.Internal, "generate fuzzing offset", err)
	}
	v := gen(r)
	if err := s.SetFloat64(key, v); err != nil {
		return 0, err
	}
	return v, nil
}
