package state

import (
	"strings"

	"github.com/studykit/devicestate/internal/crypto"
)

// NullUserID is returned when no user id has been stored yet.
const NullUserID = "NULLID"

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// IsLoggedIn reports whether the current time is before the stored login
// expiration. The default expiration of 0 means logged out.
func (s *Store) IsLoggedIn() (bool, error) {
	expiration, err := s.Int64(keyLoginExpiration, 0)
	if err != nil {
		return false, err
	}
	return s.now().UnixMilli() < expiration, nil
}

// LoginOrRefreshLogin sets the session to expire one auto-logout duration
// from now.
func (s *Store) LoginOrRefreshLogin() error {
	timeout, err := s.AutoLogoutDuration()
	if err != nil {
		return err
	}
	return s.SetInt64(keyLoginExpiration, s.now().Add(timeout).UnixMilli())
}

// Logout expires the session immediately.
func (s *Store) Logout() error {
	return s.SetInt64(keyLoginExpiration, 0)
}

// UserID returns the stored user id, or NullUserID when unregistered.
func (s *Store) UserID() (string, error) {
	return s.String(keyUserID, NullUserID)
}

// SetLoginCredentials stores the user id and the salted hash of password.
func (s *Store) SetLoginCredentials(userID, password string) error {
	if err := s.SetString(keyUserID, userID); err != nil {
		return err
	}
	return s.SetPassword(password)
}

// SetPassword stores the salted hash of password. Plaintext never persists.
func (s *Store) SetPassword(password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.SetString(keyPassword, hash)
}

// CheckPassword reports whether input matches the stored password hash.
// The comparison is constant-time. A store with no password rejects
// everything.
func (s *Store) CheckPassword(input string) (bool, error) {
	stored, err := s.String(keyPassword, "")
	if err != nil {
		return false, err
	}
	if stored == "" {
		return false, nil
	}
	hash, err := s.hash(input)
	if err != nil {
		return false, err
	}
	return crypto.SecureCompare(stored, hash), nil
}

// PasswordMeetsRequirements checks the length policy.
func PasswordMeetsRequirements(password string) bool {
	return len(password) >= MinPasswordLength
}

func (s *Store) hash(password string) (string, error) {
	salt, err := s.HashSalt()
	if err != nil {
		return "", err
	}
	iterations, err := s.HashIterations()
	if err != nil {
		return "", err
	}
	return crypto.HashPassword(password, salt, iterations), nil
}

// IsRegistered reports whether registration completed.
func (s *Store) IsRegistered() (bool, error) {
	return s.Bool(keyIsRegistered, false)
}

// SetRegistered records registration completion.
func (s *Store) SetRegistered(v bool) error {
	return s.SetBool(keyIsRegistered, v)
}

// DeviceSettingsSet reports whether device settings were applied.
func (s *Store) DeviceSettingsSet() (bool, error) {
	return s.Bool(keyDeviceSettingsSet, false)
}

// SetDeviceSettingsSet records that device settings were applied.
func (s *Store) SetDeviceSettingsSet(v bool) error {
	return s.SetBool(keyDeviceSettingsSet, v)
}

// KeyWritten reports whether the encryption key material was persisted.
func (s *Store) KeyWritten() (bool, error) {
	return s.Bool(keyKeyWritten, false)
}

// SetKeyWritten records that the encryption key material was persisted.
func (s *Store) SetKeyWritten(v bool) error {
	return s.SetBool(keyKeyWritten, v)
}

// ErrorDuringRegistration reports whether registration raised an error.
func (s *Store) ErrorDuringRegistration() (bool, error) {
	return s.Bool(keyErrorDuringRegistration, false)
}

// SetErrorDuringRegistration records a registration error.
func (s *Store) SetErrorDuringRegistration(v bool) error {
	return s.SetBool(keyErrorDuringRegistration, v)
}

// CheckBadRegistration reports a broken registration: key material never
// written, device settings never applied, or an error raised during
// registration.
func (s *Store) CheckBadRegistration() (bool, error) {
	keyWritten, err := s.KeyWritten()
	if err != nil {
		return false, err
	}
	settingsSet, err := s.DeviceSettingsSet()
	if err != nil {
		return false, err
	}
	regError, err := s.ErrorDuringRegistration()
	if err != nil {
		return false, err
	}
	return !keyWritten || !settingsSet || regError, nil
}

// ServerURL returns the configured server URL, empty when unset.
func (s *Store) ServerURL() (string, error) {
	return s.String(keyServerURL, "")
}

// SetServerURL normalizes the URL to https before storing it.
func (s *Store) SetServerURL(serverURL string) error {
	return s.SetString(keyServerURL, forceHTTPS(serverURL))
}

func forceHTTPS(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return serverURL
	case strings.HasPrefix(serverURL, "http://"):
		return "https://" + strings.TrimPrefix(serverURL, "http://")
	default:
		return "https://" + serverURL
	}
}

// FCMInstanceID returns the push-messaging instance id, empty when unset.
func (s *Store) FCMInstanceID() (string, error) {
	return s.String(keyFCMInstanceID, "")
}

// SetFCMInstanceID stores the push-messaging instance id.
func (s *Store) SetFCMInstanceID(id string) error {
	return s.SetString(keyFCMInstanceID, id)
}
