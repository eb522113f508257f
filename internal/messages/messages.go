// Package messages implements the on-device message inbox: an id-keyed map
// of user-facing messages persisted as a single JSON object in the state
// store, plus the notification lifecycle around it.
package messages

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studykit/devicestate/internal/errs"
	"github.com/studykit/devicestate/internal/state"
)

// inboxKey is the single setting holding the whole serialized inbox.
const inboxKey = "stored_messages"

// StoredMessage is one inbox entry.
type StoredMessage struct {
	Content    string `json:"content"`
	ReceivedOn string `json:"receivedOn"`
}

// Notifier is the notification sink the inbox drives. Implementations show
// and withdraw the platform notification for a message id.
type Notifier interface {
	ShowMessageNotification(ctx context.Context, messageID string)
	DismissNotification(ctx context.Context, messageID string, silent bool)
}

// Inbox owns the stored message mapping. The decode-modify-encode-write
// cycle is serialized behind a mutex: two concurrent inserts would otherwise
// both decode the same prior mapping and the second write would silently
// drop the first message.
type Inbox struct {
	store    *state.Store
	notifier Notifier
	clock    func() time.Time
	mu       sync.Mutex
}

// NewInbox creates an Inbox over an opened state store and a notifier.
func NewInbox(store *state.Store, notifier Notifier) *Inbox {
	return &Inbox{
		store:    store,
		notifier: notifier,
		clock:    time.Now,
	}
}

// NewInboxWithClock is NewInbox with an injected time source for tests.
func NewInboxWithClock(store *state.Store, notifier Notifier, clock func() time.Time) *Inbox {
	inbox := NewInbox(store, notifier)
	inbox.clock = clock
	return inbox
}

// Get returns the message stored under id, or nil when the inbox is absent
// or the id is unknown.
func (b *Inbox) Get(id string) (*StoredMessage, error) {
	all, err := b.load()
	if err != nil {
		return nil, err
	}
	msg, ok := all[id]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

// All returns the whole inbox mapping. Order is unspecified.
func (b *Inbox) All() (map[string]StoredMessage, error) {
	return b.load()
}

// ShowAll invokes the notifier once per stored message id.
func (b *Inbox) ShowAll(ctx context.Context) error {
	all, err := b.load()
	if err != nil {
		return err
	}
	for id := range all {
		b.notifier.ShowMessageNotification(ctx, id)
	}
	return nil
}

// HandleNew stores a freshly received message under a new random id,
// persists the re-encoded inbox, shows its notification, and returns the id.
func (b *Inbox) HandleNew(ctx context.Context, content string) (string, error) {
	b.mu.Lock()
	all, err := b.load()
	if err != nil {
		b.mu.Unlock()
		return "", err
	}

	id := uuid.New().String()
	all[id] = StoredMessage{
		Content:    content,
		ReceivedOn: b.clock().UTC().Format(time.RFC3339),
	}
	if err := b.save(all); err != nil {
		b.mu.Unlock()
		return "", err
	}
	b.mu.Unlock()

	b.notifier.ShowMessageNotification(ctx, id)
	return id, nil
}

// Delete removes the message under id and withdraws its visible
// notification (non-silent). An empty id is a no-op, as is deleting an id
// that is already gone.
func (b *Inbox) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	b.mu.Lock()
	all, err := b.load()
	if err != nil {
		b.mu.Unlock()
		return err
	}
	delete(all, id)
	if err := b.save(all); err != nil {
		b.mu.Unlock()
		return err
	}
	b.mu.Unlock()

	b.notifier.DismissNotification(ctx, id, false)
	return nil
}

// load decodes the inbox mapping. Absence and malformed data both decode to
// an empty mapping; decode failures are logged, never surfaced.
func (b *Inbox) load() (map[string]StoredMessage, error) {
	raw, err := b.store.String(inboxKey, "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return map[string]StoredMessage{}, nil
	}

	var all map[string]StoredMessage
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		slog.Warn("malformed message inbox, treating as empty", "error", err)
		return map[string]StoredMessage{}, nil
	}
	if all == nil {
		all = map[string]StoredMessage{}
	}
	return all, nil
}

func (b *Inbox) save(all map[string]StoredMessage) error {
	encoded, err := json.Marshal(all)
	if err != nil {
		return errs.Wrap(errs.Internal, "encode message inbox", err)
	}
	return b.store.SetString(inboxKey, string(encoded))
}
