package state

import "time"

// Default timings, used only until the app downloads study-specific ones.
const (
	DefaultAccelerometerOffDuration = 10 * time.Second
	DefaultAccelerometerOnDuration  = 10 * time.Minute
	DefaultGyroscopeOffDuration     = 10 * time.Second
	DefaultGyroscopeOnDuration      = 10 * time.Minute
	DefaultBluetoothOnDuration      = 1 * time.Minute
	DefaultBluetoothTotalDuration   = 5 * time.Minute
	DefaultBluetoothGlobalOffset    = 0 * time.Minute
	DefaultSurveyCheckFrequency     = 24 * time.Hour
	DefaultNewDataFilesFrequency    = 15 * time.Minute
	DefaultGPSOffDuration           = 5 * time.Minute
	DefaultGPSOnDuration            = 5 * time.Minute
	DefaultUploadFrequency          = 1 * time.Minute
	DefaultVoiceRecordingMaxLength  = 4 * time.Minute
	DefaultWifiLogFrequency         = 5 * time.Minute
)

// Default UI text, overridden per study by the downloaded device settings.
const (
	DefaultAboutPageText     = "This app collects data for a research study you are enrolled in."
	DefaultCallClinicianText = "Call My Clinician"
	DefaultConsentFormText   = "I have read and understood the information about the study."
	DefaultSubmitSuccessText = "Thank you for completing the survey."
)

// Listener toggles. All default to disabled until device settings arrive.

func (s *Store) AccelerometerEnabled() (bool, error) { return s.Bool(keyAccelerometer, false) }
func (s *Store) SetAccelerometerEnabled(v bool) error { return s.SetBool(keyAccelerometer, v) }

func (s *Store) GyroscopeEnabled() (bool, error)  { return s.Bool(keyGyroscope, false) }
func (s *Store) SetGyroscopeEnabled(v bool) error { return s.SetBool(keyGyroscope, v) }

func (s *Store) GPSEnabled() (bool, error)  { return s.Bool(keyGPS, false) }
func (s *Store) SetGPSEnabled(v bool) error { return s.SetBool(keyGPS, v) }

func (s *Store) CallsEnabled() (bool, error)  { return s.Bool(keyCalls, false) }
func (s *Store) SetCallsEnabled(v bool) error { return s.SetBool(keyCalls, v) }

func (s *Store) TextsEnabled() (bool, error)  { return s.Bool(keyTexts, false) }
func (s *Store) SetTextsEnabled(v bool) error { return s.SetBool(keyTexts, v) }

func (s *Store) WifiEnabled() (bool, error)  { return s.Bool(keyWifi, false) }
func (s *Store) SetWifiEnabled(v bool) error { return s.SetBool(keyWifi, v) }

func (s *Store) BluetoothEnabled() (bool, error)  { return s.Bool(keyBluetooth, false) }
func (s *Store) SetBluetoothEnabled(v bool) error { return s.SetBool(keyBluetooth, v) }

func (s *Store) PowerStateEnabled() (bool, error)  { return s.Bool(keyPowerState, false) }
func (s *Store) SetPowerStateEnabled(v bool) error { return s.SetBool(keyPowerState, v) }

func (s *Store) UploadOverCellularAllowed() (bool, error) {
	return s.Bool(keyUploadOverCellular, false)
}
func (s *Store) SetUploadOverCellularAllowed(v bool) error {
	return s.SetBool(keyUploadOverCellular, v)
}

// Timer settings. Stored in seconds (the downloaded unit); read back as
// durations.

func (s *Store) duration(key string, def time.Duration) (time.Duration, error) {
	seconds, err := s.Int64(key, int64(def/time.Second))
	if err != nil {
		return def, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func (s *Store) AccelerometerOffDuration() (time.Duration, error) {
	return s.duration(keyAccelerometerOffSeconds, DefaultAccelerometerOffDuration)
}
func (s *Store) SetAccelerometerOffSeconds(seconds int64) error {
	return s.SetInt64(keyAccelerometerOffSeconds, seconds)
}

func (s *Store) AccelerometerOnDuration() (time.Duration, error) {
	return s.duration(keyAccelerometerOnSeconds, DefaultAccelerometerOnDuration)
}
func (s *Store) SetAccelerometerOnSeconds(seconds int64) error {
	return s.SetInt64(keyAccelerometerOnSeconds, seconds)
}

func (s *Store) GyroscopeOffDuration() (time.Duration, error) {
	return s.duration(keyGyroscopeOffSeconds, DefaultGyroscopeOffDuration)
}
func (s *Store) SetGyroscopeOffSeconds(seconds int64) error {
	return s.SetInt64(keyGyroscopeOffSeconds, seconds)
}

func (s *Store) GyroscopeOnDuration() (time.Duration, error) {
	return s.duration(keyGyroscopeOnSeconds, DefaultGyroscopeOnDuration)
}
func (s *Store) SetGyroscopeOnSeconds(seconds int64) error {
	return s.SetInt64(keyGyroscopeOnSeconds, seconds)
}

func (s *Store) BluetoothOnDuration() (time.Duration, error) {
	return s.duration(keyBluetoothOnSeconds, DefaultBluetoothOnDuration)
}
func (s *Store) SetBluetoothOnSeconds(seconds int64) error {
	return s.SetInt64(keyBluetoothOnSeconds, seconds)
}

func (s *Store) BluetoothTotalDuration() (time.Duration, error) {
	return s.duration(keyBluetoothTotalSeconds, DefaultBluetoothTotalDuration)
}
func (s *Store) SetBluetoothTotalSeconds(seconds int64) error {
	return s.SetInt64(keyBluetoothTotalSeconds, seconds)
}

func (s *Store) BluetoothGlobalOffset() (time.Duration, error) {
	return s.duration(keyBluetoothGlobalOffset, DefaultBluetoothGlobalOffset)
}
func (s *Store) SetBluetoothGlobalOffsetSeconds(seconds int64) error {
	return s.SetInt64(keyBluetoothGlobalOffset, seconds)
}

func (s *Store) SurveyCheckFrequency() (time.Duration, error) {
	return s.duration(keySurveyCheckSeconds, DefaultSurveyCheckFrequency)
}
func (s *Store) SetSurveyCheckFrequencySeconds(seconds int64) error {
	return s.SetInt64(keySurveyCheckSeconds, seconds)
}

func (s *Store) NewDataFilesFrequency() (time.Duration, error) {
	return s.duration(keyNewDataFilesSeconds, DefaultNewDataFilesFrequency)
}
func (s *Store) SetNewDataFilesFrequencySeconds(seconds int64) error {
	return s.SetInt64(keyNewDataFilesSeconds, seconds)
}

func (s *Store) GPSOffDuration() (time.Duration, error) {
	return s.duration(keyGPSOffSeconds, DefaultGPSOffDuration)
}
func (s *Store) SetGPSOffSeconds(seconds int64) error {
	return s.SetInt64(keyGPSOffSeconds, seconds)
}

func (s *Store) GPSOnDuration() (time.Duration, error) {
	return s.duration(keyGPSOnSeconds, DefaultGPSOnDuration)
}
func (s *Store) SetGPSOnSeconds(seconds int64) error {
	return s.SetInt64(keyGPSOnSeconds, seconds)
}

// AutoLogoutDuration is the session lifetime used by LoginOrRefreshLogin.
// Falls back to the configured default when the study never set one.
func (s *Store) AutoLogoutDuration() (time.Duration, error) {
	return s.duration(keySecondsBeforeAutoLogout, s.autoLogoutFallback)
}
func (s *Store) SetAutoLogoutSeconds(seconds int64) error {
	return s.SetInt64(keySecondsBeforeAutoLogout, seconds)
}

func (s *Store) UploadFrequency() (time.Duration, error) {
	return s.duration(keyUploadDataFilesSeconds, DefaultUploadFrequency)
}
func (s *Store) SetUploadFrequencySeconds(seconds int64) error {
	return s.SetInt64(keyUploadDataFilesSeconds, seconds)
}

func (s *Store) VoiceRecordingMaxLength() (time.Duration, error) {
	return s.duration(keyVoiceRecordingMaxSeconds, DefaultVoiceRecordingMaxLength)
}
func (s *Store) SetVoiceRecordingMaxSeconds(seconds int64) error {
	return s.SetInt64(keyVoiceRecordingMaxSeconds, seconds)
}

func (s *Store) WifiLogFrequency() (time.Duration, error) {
	return s.duration(keyWifiLogFrequencySeconds, DefaultWifiLogFrequency)
}
func (s *Store) SetWifiLogFrequencySeconds(seconds int64) error {
	return s.SetInt64(keyWifiLogFrequencySeconds, seconds)
}

// UI text strings.

func (s *Store) AboutPageText() (string, error) {
	return s.String(keyAboutPageText, DefaultAboutPageText)
}
func (s *Store) SetAboutPageText(text string) error {
	return s.SetString(keyAboutPageText, text)
}

func (s *Store) CallClinicianButtonText() (string, error) {
	return s.String(keyCallClinicianText, DefaultCallClinicianText)
}
func (s *Store) SetCallClinicianButtonText(text string) error {
	return s.SetString(keyCallClinicianText, text)
}

func (s *Store) ConsentFormText() (string, error) {
	return s.String(keyConsentFormText, DefaultConsentFormText)
}
func (s *Store) SetConsentFormText(text string) error {
	return s.SetString(keyConsentFormText, text)
}

func (s *Store) SurveySubmitSuccessText() (string, error) {
	return s.String(keySubmitSuccessText, DefaultSubmitSuccessText)
}
func (s *Store) SetSurveySubmitSuccessText(text string) error {
	return s.SetString(keySubmitSuccessText, text)
}

// Contact numbers.

func (s *Store) PrimaryCareNumber() (string, error) {
	return s.String(keyPrimaryCareNumber, "")
}
func (s *Store) SetPrimaryCareNumber(phone string) error {
	return s.SetString(keyPrimaryCareNumber, phone)
}

func (s *Store) PasswordResetNumber() (string, error) {
	return s.String(keyPasswordResetNumber, "")
}
func (s *Store) SetPasswordResetNumber(phone string) error {
	return s.SetString(keyPasswordResetNumber, phone)
}

// Call buttons.

func (s *Store) CallClinicianButtonEnabled() (bool, error) {
	return s.Bool(keyCallClinicianEnabled, false)
}
func (s *Store) SetCallClinicianButtonEnabled(v bool) error {
	return s.SetBool(keyCallClinicianEnabled, v)
}

func (s *Store) CallResearchAssistantButtonEnabled() (bool, error) {
	return s.Bool(keyCallAssistantEnabled, false)
}
func (s *Store) SetCallResearchAssistantButtonEnabled(v bool) error {
	return s.SetBool(keyCallAssistantEnabled, v)
}

// AnonymizedHashing defaults to true: absent means safe hashing.
func (s *Store) AnonymizedHashing() (bool, error) {
	return s.Bool(keyAnonymizedHashing, true)
}
func (s *Store) SetAnonymizedHashing(v bool) error {
	return s.SetBool(keyAnonymizedHashing, v)
}

// MostRecentAlarmTime returns the last fire time recorded for a recurring
// timer. Defaults to 0 so "has this timer event already passed" checks
// conclude yes on a fresh install.
func (s *Store) MostRecentAlarmTime(identifier string) (int64, error) {
	return s.Int64(identifier+"-prior_alarm", 0)
}

// SetMostRecentAlarmTime records a timer fire time, epoch millis.
func (s *Store) SetMostRecentAlarmTime(identifier string, epochMillis int64) error {
	return s.SetInt64(identifier+"-prior_alarm", epochMillis)
}
