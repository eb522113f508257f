package state

// Setting keys. The literal strings match the original deployment's
// preference names so a migrated settings dump lines up key for key.
const (
	keyServerURL               = "serverUrl"
	keyUserID                  = "uid"
	keyPassword                = "password"
	keyIsRegistered            = "IsRegistered"
	keyDeviceSettingsSet       = "deviceSettingsSet"
	keyKeyWritten              = "keyWritten"
	keyErrorDuringRegistration = "errorDuringRegistration"
	keyLoginExpiration         = "loginExpirationTimestamp"
	keyPrimaryCareNumber       = "primary_care"
	keyPasswordResetNumber     = "reset_number"
	keyFCMInstanceID           = "fcmInstanceID"

	keyAccelerometer     = "accelerometer"
	keyGyroscope         = "gyroscope"
	keyGPS               = "gps"
	keyCalls             = "calls"
	keyTexts             = "texts"
	keyWifi              = "wifi"
	keyBluetooth         = "bluetooth"
	keyPowerState        = "power_state"
	keyUploadOverCellular = "allow_upload_over_cellular_data"

	keyAccelerometerOffSeconds   = "accelerometer_off_duration_seconds"
	keyAccelerometerOnSeconds    = "accelerometer_on_duration_seconds"
	keyGyroscopeOnSeconds        = "gyro_on_duration_seconds"
	keyGyroscopeOffSeconds       = "gyro_off_duration_seconds"
	keyBluetoothOnSeconds        = "bluetooth_on_duration_seconds"
	keyBluetoothTotalSeconds     = "bluetooth_total_duration_seconds"
	keyBluetoothGlobalOffset     = "bluetooth_global_offset_seconds"
	keySurveyCheckSeconds        = "check_for_new_surveys_frequency_seconds"
	keyNewDataFilesSeconds       = "create_new_data_files_frequency_seconds"
	keyGPSOffSeconds             = "gps_off_duration_seconds"
	keyGPSOnSeconds              = "gps_on_duration_seconds"
	keySecondsBeforeAutoLogout   = "seconds_before_auto_logout"
	keyUploadDataFilesSeconds    = "upload_data_files_frequency_seconds"
	keyVoiceRecordingMaxSeconds  = "voice_recording_max_time_length_seconds"
	keyWifiLogFrequencySeconds   = "wifi_log_frequency_seconds"

	keyAboutPageText         = "about_page_text"
	keyCallClinicianText     = "call_clinician_button_text"
	keyConsentFormText       = "consent_form_text"
	keySubmitSuccessText     = "survey_submit_success_toast_text"
	keyCallClinicianEnabled  = "call_clinician_button_enabled"
	keyCallAssistantEnabled  = "call_research_assistant_button_enabled"

	keyHashSalt            = "hash_salt_key"
	keyHashIterations      = "hash_iterations_key"
	keyAnonymizedHashing   = "use_anonymized_hashing"
	keyUseGPSFuzzing       = "gps_fuzzing_key"
	keyLatitudeOffset      = "latitude_offset_key"
	keyLongitudeOffset     = "longitude_offset_key"
)
