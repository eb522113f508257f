package messages_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/studykit/devicestate/internal/kvstore/testutil"
	"github.com/studykit/devicestate/internal/messages"
	"github.com/studykit/devicestate/internal/state"
)

// fakeNotifier records notification calls.
type fakeNotifier struct {
	mu        sync.Mutex
	shown     []string
	dismissed []dismissCall
}

type dismissCall struct {
	id     string
	silent bool
}

func (n *fakeNotifier) ShowMessageNotification(_ context.Context, messageID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, messageID)
}

func (n *fakeNotifier) DismissNotification(_ context.Context, messageID string, silent bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dismissed = append(n.dismissed, dismissCall{id: messageID, silent: silent})
}

func setupInbox(t testing.TB) (*messages.Inbox, *fakeNotifier, *state.Store) {
	t.Helper()
	m, err := testutil.NewMapInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	s, err := state.Open(m, state.Options{})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	clock := func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return messages.NewInboxWithClock(s, notifier, clock), notifier, s
}

func TestGet_AbsentInbox(t *testing.T) {
	t.Parallel()
	inbox, _, _ := setupInbox(t)

	msg, err := inbox.Get("nope")
	require.NoError(t, err)
	require.Nil(t, msg)
}

func TestHandleNew_RoundTrip(t *testing.T) {
	t.Parallel()
	inbox, notifier, _ := setupInbox(t)

	ctx := context.Background()
	id, err := inbox.HandleNew(ctx, "hello")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msg, err := inbox.Get(id)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, "2024-03-01T12:00:00Z", msg.ReceivedOn)

	require.Equal(t, []string{id}, notifier.shown)
}

func TestHandleNew_FreshIDs(t *testing.T) {
	t.Parallel()
	inbox, _, _ := setupInbox(t)

	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := inbox.HandleNew(ctx, "m")
		require.NoError(t, err)
		require.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}

	all, err := inbox.All()
	require.NoError(t, err)
	require.Len(t, all, 20)
}

func TestDelete_RemovesAndDismissesOnce(t *testing.T) {
	t.Parallel()
	inbox, notifier, _ := setupInbox(t)

	ctx := context.Background()
	id, err := inbox.HandleNew(ctx, "to be deleted")
	require.NoError(t, err)

	require.NoError(t, inbox.Delete(ctx, id))

	msg, err := inbox.Get(id)
	require.NoError(t, err)
	require.Nil(t, msg)

	require.Equal(t, []dismissCall{{id: id, silent: false}}, notifier.dismissed)
}

func TestDelete_EmptyIDIsNoOp(t *testing.T) {
	t.Parallel()
	inbox, notifier, _ := setupInbox(t)

	require.NoError(t, inbox.Delete(context.Background(), ""))
	require.Empty(t, notifier.dismissed)
}

func TestDelete_AbsentIDStillDismisses(t *testing.T) {
	t.Parallel()
	inbox, notifier, _ := setupInbox(t)

	// Removing an unknown entry is a mapping no-op, but the sink is still
	// told to withdraw whatever notification might be showing for that id.
	require.NoError(t, inbox.Delete(context.Background(), "ghost"))
	require.Equal(t, []dismissCall{{id: "ghost", silent: false}}, notifier.dismissed)
}

func TestShowAll_NotifiesEveryStoredID(t *testing.T) {
	t.Parallel()
	inbox, notifier, _ := setupInbox(t)

	ctx := context.Background()
	id1, err := inbox.HandleNew(ctx, "one")
	require.NoError(t, err)
	id2, err := inbox.HandleNew(ctx, "two")
	require.NoError(t, err)

	notifier.shown = nil
	require.NoError(t, inbox.ShowAll(ctx))
	require.ElementsMatch(t, []string{id1, id2}, notifier.shown)
}

func TestLoad_MalformedBlobDegradesToEmpty(t *testing.T) {
	t.Parallel()
	inbox, _, s := setupInbox(t)

	require.NoError(t, s.SetString("stored_messages", "{not json"))

	msg, err := inbox.Get("anything")
	require.NoError(t, err)
	require.Nil(t, msg)

	all, err := inbox.All()
	require.NoError(t, err)
	require.Empty(t, all)

	// A new message writes a clean inbox over the corrupt blob.
	id, err := inbox.HandleNew(context.Background(), "recovered")
	require.NoError(t, err)
	got, err := inbox.Get(id)
	require.NoError(t, err)
	require.Equal(t, "recovered", got.Content)
}

// Property: the inbox mapping survives any sequence of inserts and deletes
// with membership intact.
func testInbox_Membership(t *rapid.T) {
	m, err := testutil.NewMapInMemory()
	if err != nil {
		t.Fatalf("in-memory map: %v", err)
	}
	defer m.Close()
	s, err := state.Open(m, state.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	inbox := messages.NewInbox(s, &fakeNotifier{})

	ctx := context.Background()
	model := map[string]string{}

	steps := rapid.IntRange(1, 25).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		if len(model) > 0 && rapid.Bool().Draw(t, "delete") {
			var ids []string
			for id := range model {
				ids = append(ids, id)
			}
			victim := rapid.SampledFrom(ids).Draw(t, "victim")
			if err := inbox.Delete(ctx, victim); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			delete(model, victim)
		} else {
			content := rapid.StringMatching(`[ -~]{0,60}`).Draw(t, "content")
			id, err := inbox.HandleNew(ctx, content)
			if err != nil {
				t.Fatalf("HandleNew: %v", err)
			}
			if _, dup := model[id]; dup {
				t.Fatalf("id %s reused", id)
			}
			model[id] = content
		}

		all, err := inbox.All()
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != len(model) {
			t.Fatalf("size drifted: got %d want %d", len(all), len(model))
		}
		for id, content := range model {
			got, ok := all[id]
			if !ok {
				t.Fatalf("id %s missing from inbox", id)
			}
			if got.Content != content {
				t.Fatalf("content drifted for %s: got %q want %q", id, got.Content, content)
			}
			if got.ReceivedOn == "" {
				t.Fatalf("receivedOn empty for %s", id)
			}
		}
	}
}

func TestInbox_Membership_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testInbox_Membership)
}

func FuzzInbox_Membership(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testInbox_Membership))
}
