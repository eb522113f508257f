package state_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studykit/devicestate/internal/errs"
	"github.com/studykit/devicestate/internal/kvstore/testutil"
	"github.com/studykit/devicestate/internal/state"
)

// fakeClock is a mutable time source for session-expiry tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupStore(t testing.TB) (*state.Store, *fakeClock) {
	t.Helper()
	m, err := testutil.NewMapInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := state.Open(m, state.Options{Clock: clock.Now})
	require.NoError(t, err)
	return s, clock
}

func TestOpen_NilMap(t *testing.T) {
	t.Parallel()
	_, err := state.Open(nil, state.Options{})
	require.Error(t, err)
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestStore_UseBeforeOpenPanics(t *testing.T) {
	t.Parallel()

	var s *state.Store
	require.Panics(t, func() { s.IsLoggedIn() }) //nolint:errcheck

	var zero state.Store
	require.Panics(t, func() { zero.Bool("x", false) }) //nolint:errcheck
}

func TestStore_UseAfterClosePanics(t *testing.T) {
	t.Parallel()

	s, _ := setupStore(t)
	s.Close()
	require.Panics(t, func() { s.SetBool("x", true) }) //nolint:errcheck
}

func TestTypedAccessors_DefaultWhenAbsent(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	b, err := s.Bool("nope", true)
	require.NoError(t, err)
	require.True(t, b)

	str, err := s.String("nope", "fallback")
	require.NoError(t, err)
	require.Equal(t, "fallback", str)

	i64, err := s.Int64("nope", 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), i64)

	f, err := s.Float64("nope", 3.5)
	require.NoError(t, err)
	require.Equal(t, 3.5, f)

	i, err := s.Int("nope", 7)
	require.NoError(t, err)
	require.Equal(t, 7, i)
}

func TestTypedAccessors_WriteThrough(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	require.NoError(t, s.SetBool("flag", true))
	b, err := s.Bool("flag", false)
	require.NoError(t, err)
	require.True(t, b)

	require.NoError(t, s.SetFloat64("ratio", -0.25))
	f, err := s.Float64("ratio", 0)
	require.NoError(t, err)
	require.Equal(t, -0.25, f)
}

func TestTypedAccessors_MalformedDegradesToDefault(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	require.NoError(t, s.SetString("count", "banana"))
	v, err := s.Int64("count", 99)
	require.NoError(t, err)
	require.Equal(t, int64(99), v)
}

func TestSession_LoginLifecycle(t *testing.T) {
	t.Parallel()
	s, clock := setupStore(t)

	// Fresh install: logged out.
	loggedIn, err := s.IsLoggedIn()
	require.NoError(t, err)
	require.False(t, loggedIn)

	require.NoError(t, s.LoginOrRefreshLogin())
	loggedIn, err = s.IsLoggedIn()
	require.NoError(t, err)
	require.True(t, loggedIn)

	// Advance past the default auto-logout window.
	clock.Advance(state.DefaultAutoLogout + time.Second)
	loggedIn, err = s.IsLoggedIn()
	require.NoError(t, err)
	require.False(t, loggedIn)

	// Refresh re-arms the session; logout kills it immediately.
	require.NoError(t, s.LoginOrRefreshLogin())
	loggedIn, _ = s.IsLoggedIn()
	require.True(t, loggedIn)

	require.NoError(t, s.Logout())
	loggedIn, err = s.IsLoggedIn()
	require.NoError(t, err)
	require.False(t, loggedIn)
}

func TestSession_StoredAutoLogoutWins(t *testing.T) {
	t.Parallel()
	s, clock := setupStore(t)

	require.NoError(t, s.SetAutoLogoutSeconds(10))
	require.NoError(t, s.LoginOrRefreshLogin())

	clock.Advance(9 * time.Second)
	loggedIn, err := s.IsLoggedIn()
	require.NoError(t, err)
	require.True(t, loggedIn)

	clock.Advance(2 * time.Second)
	loggedIn, err = s.IsLoggedIn()
	require.NoError(t, err)
	require.False(t, loggedIn)
}

func TestCredentials_SetAndCheck(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	require.NoError(t, s.SetLoginCredentials("patient-7", "hunter22"))

	id, err := s.UserID()
	require.NoError(t, err)
	require.Equal(t, "patient-7", id)

	ok, err := s.CheckPassword("hunter22")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.CheckPassword("hunter23")
	require.NoError(t, err)
	require.False(t, ok)

	// Every single-character mutation of the password must fail.
	password := "hunter22"
	for i := range password {
		mutated := []byte(password)
		mutated[i] ^= 0x01
		ok, err := s.CheckPassword(string(mutated))
		require.NoError(t, err)
		require.False(t, ok, "mutation at index %d accepted", i)
	}
}

func TestCheckPassword_NoPasswordStored(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	ok, err := s.CheckPassword("anything")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserID_DefaultsToNullID(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	id, err := s.UserID()
	require.NoError(t, err)
	require.Equal(t, state.NullUserID, id)
}

func TestPasswordMeetsRequirements(t *testing.T) {
	t.Parallel()

	require.False(t, state.PasswordMeetsRequirements("short"))
	require.True(t, state.PasswordMeetsRequirements("longer"))
}

func TestCheckBadRegistration(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	// Fresh install: nothing written, registration is bad.
	bad, err := s.CheckBadRegistration()
	require.NoError(t, err)
	require.True(t, bad)

	require.NoError(t, s.SetKeyWritten(true))
	require.NoError(t, s.SetDeviceSettingsSet(true))
	bad, err = s.CheckBadRegistration()
	require.NoError(t, err)
	require.False(t, bad)

	require.NoError(t, s.SetErrorDuringRegistration(true))
	bad, err = s.CheckBadRegistration()
	require.NoError(t, err)
	require.True(t, bad)
}

func TestServerURL_ForcesHTTPS(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	for input, want := range map[string]string{
		"https://study.example.org": "https://study.example.org",
		"http://study.example.org":  "https://study.example.org",
		"study.example.org":         "https://study.example.org",
	} {
		require.NoError(t, s.SetServerURL(input))
		got, err := s.ServerURL()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestTimerSettings_DefaultsAndOverrides(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	d, err := s.SurveyCheckFrequency()
	require.NoError(t, err)
	require.Equal(t, state.DefaultSurveyCheckFrequency, d)

	require.NoError(t, s.SetSurveyCheckFrequencySeconds(3600))
	d, err = s.SurveyCheckFrequency()
	require.NoError(t, err)
	require.Equal(t, time.Hour, d)

	d, err = s.GPSOnDuration()
	require.NoError(t, err)
	require.Equal(t, state.DefaultGPSOnDuration, d)
}

func TestMostRecentAlarmTime_DefaultsToZero(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	v, err := s.MostRecentAlarmTime("gps")
	require.NoError(t, err)
	require.Zero(t, v)

	require.NoError(t, s.SetMostRecentAlarmTime("gps", 1700000000000))
	v, err = s.MostRecentAlarmTime("gps")
	require.NoError(t, err)
	require.Equal(t, int64(1700000000000), v)
}

func TestAnonymizedHashing_DefaultsTrue(t *testing.T) {
	t.Parallel()
	s, _ := setupStore(t)

	v, err := s.AnonymizedHashing()
	require.NoError(t, err)
	require.True(t, v)

	require.NoError(t, s.SetAnonymizedHashing(false))
	v, err = s.AnonymizedHashing()
	require.NoError(t, err)
	require.False(t, v)
}
