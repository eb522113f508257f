// Package survey maintains the ordered set of known survey identifiers and
// the per-survey bookkeeping keys: content, timing schedule, type, settings
// blob, notification state, most recent alarm time, and the question memory
// (question ids already shown, kept to avoid repeats).
//
// Uniqueness is a hard invariant: the downloader guarantees ids are unique,
// so adding a duplicate or removing an absent id signals a coordination bug
// upstream and surfaces as an invariant violation, never a soft no-op.
package survey

import (
	"encoding/json"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/studykit/devicestate/internal/errs"
	"github.com/studykit/devicestate/internal/state"
)

const (
	indexKey = "survey_ids"

	suffixContent           = "-content"
	suffixTimes             = "-times"
	suffixType              = "-type"
	suffixSettings          = "-settings"
	suffixNotificationState = "-notificationState"
	suffixQuestionIDs       = "-questionIds"
	suffixPriorAlarm        = "-prior_alarm"

	// emptySentinel is the legacy "no list yet" marker; it decodes like an
	// absent key.
	emptySentinel = "0"
)

// Registry is the survey bookkeeping layer over the state store. Mutations
// of the id set and of each question-memory set are serialized behind one
// mutex so concurrent decode-modify-write cycles cannot lose updates.
type Registry struct {
	store *state.Store
	mu    sync.Mutex
}

// NewRegistry creates a Registry over an opened state store.
func NewRegistry(store *state.Store) *Registry {
	return &Registry{store: store}
}

// SurveyIDs returns all known survey ids in insertion order. An absent index,
// the legacy "0" sentinel, and malformed JSON all decode to an empty list;
// decode failures are logged and never propagated.
func (r *Registry) SurveyIDs() ([]string, error) {
	return r.decodeIDList(indexKey)
}

// AddSurveyID appends a new survey id to the index. Adding an id that is
// already present is an invariant violation.
func (r *Registry) AddSurveyID(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.decodeIDList(indexKey)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return errs.New(errs.InvariantViolation, "duplicate survey id added: "+id)
	}
	return r.encodeIDList(indexKey, append(ids, id))
}

// removeSurveyID drops id from the index. Removing an id that is not present
// is an invariant violation. Callers go through DeleteSurvey.
func (r *Registry) removeSurveyID(id string) error {
	ids, err := r.decodeIDList(indexKey)
	if err != nil {
		return err
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return errs.New(errs.InvariantViolation, "survey id does not exist: "+id)
	}
	return r.encodeIDList(indexKey, slices.Delete(ids, i, i+1))
}

// CreateSurveyData writes the four content-bearing settings for a survey.
// It performs no uniqueness check; registering the id via AddSurveyID is a
// separate step owned by the downloader.
func (r *Registry) CreateSurveyData(id, content, timings, surveyType, settings string) error {
	if err := r.SetContent(id, content); err != nil {
		return err
	}
	if err := r.SetTimes(id, timings); err != nil {
		return err
	}
	if err := r.SetType(id, surveyType); err != nil {
		return err
	}
	return r.SetSettings(id, settings)
}

// DeleteSurvey removes every id-prefixed key and then the id itself. Each
// removal commits independently; a crash mid-way leaves orphaned keys, an
// accepted inconsistency window for these low-stakes settings.
func (r *Registry) DeleteSurvey(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, suffix := range []string{
		suffixContent,
		suffixTimes,
		suffixType,
		suffixNotificationState,
		suffixSettings,
		suffixQuestionIDs,
	} {
		if err := r.store.Remove(id + suffix); err != nil {
			return err
		}
	}
	return r.removeSurveyID(id)
}

// Content returns the survey's content blob, empty when unset.
func (r *Registry) Content(id string) (string, error) {
	return r.store.String(id+suffixContent, "")
}

// SetContent stores the survey's content blob.
func (r *Registry) SetContent(id, content string) error {
	return r.store.SetString(id+suffixContent, content)
}

// Times returns the survey's timing schedule, empty when unset.
func (r *Registry) Times(id string) (string, error) {
	return r.store.String(id+suffixTimes, "")
}

// SetTimes stores the survey's timing schedule.
func (r *Registry) SetTimes(id, times string) error {
	return r.store.SetString(id+suffixTimes, times)
}

// Type returns the survey type, empty when unset.
func (r *Registry) Type(id string) (string, error) {
	return r.store.String(id+suffixType, "")
}

// SetType stores the survey type.
func (r *Registry) SetType(id, surveyType string) error {
	return r.store.SetString(id+suffixType, surveyType)
}

// Settings returns the survey's settings blob, empty when unset.
func (r *Registry) Settings(id string) (string, error) {
	return r.store.String(id+suffixSettings, "")
}

// SetSettings stores the survey's settings blob.
func (r *Registry) SetSettings(id, settings string) error {
	return r.store.SetString(id+suffixSettings, settings)
}

// NotificationShown reports whether the survey's notification is up.
func (r *Registry) NotificationShown(id string) (bool, error) {
	return r.store.Bool(id+suffixNotificationState, false)
}

// SetNotificationShown records the survey's notification state.
func (r *Registry) SetNotificationShown(id string, shown bool) error {
	return r.store.SetBool(id+suffixNotificationState, shown)
}

// MostRecentAlarmTime returns the survey's last alarm time in epoch millis.
// Defaults to the maximum int64 so "has the stored time passed" comparisons
// conclude it has not, the inverse of the generic alarm default of 0.
func (r *Registry) MostRecentAlarmTime(id string) (int64, error) {
	return r.store.Int64(id+suffixPriorAlarm, math.MaxInt64)
}

// SetMostRecentAlarmTime records the survey's alarm time, epoch millis.
func (r *Registry) SetMostRecentAlarmTime(id string, epochMillis int64) error {
	return r.store.SetInt64(id+suffixPriorAlarm, epochMillis)
}

// QuestionMemory returns the ordered question ids already shown for a
// survey, empty when none.
func (r *Registry) QuestionMemory(surveyID string) ([]string, error) {
	return r.decodeIDList(surveyID + suffixQuestionIDs)
}

// AddQuestionMemory appends a question id to a survey's memory. Duplicates
// are an invariant violation, as with survey ids.
func (r *Registry) AddQuestionMemory(surveyID, questionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := surveyID + suffixQuestionIDs
	ids, err := r.decodeIDList(key)
	if err != nil {
		return err
	}
	if slices.Contains(ids, questionID) {
		return errs.New(errs.InvariantViolation, "duplicate question id added: "+questionID)
	}
	return r.encodeIDList(key, append(ids, questionID))
}

// ClearQuestionMemory resets a survey's question memory to empty.
func (r *Registry) ClearQuestionMemory(surveyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.encodeIDList(surveyID+suffixQuestionIDs, []string{})
}

// decodeIDList reads a JSON array of strings from one setting. Absence and
// the legacy "0" sentinel mean empty; malformed JSON degrades to empty with
// a warning.
func (r *Registry) decodeIDList(key string) ([]string, error) {
	raw, err := r.store.String(key, emptySentinel)
	if err != nil {
		return nil, err
	}
	if raw == emptySentinel || raw == "" {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Warn("malformed id list, treating as empty", "key", key, "error", err)
		return []string{}, nil
	}
	return ids, nil
}

func (r *Registry) encodeIDList(key string, ids []string) error {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return errs.Wrap(errs.Internal, "encode id list "+key, err)
	}
	return r.store.SetString(key, string(encoded))
}
