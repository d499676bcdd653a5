package subscription

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/commitlog"
	logsqlite "github.com/louisbranch/continental/internal/game/commitlog/sqlite"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/reducer"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

func newTestManager(t *testing.T) (*Manager, *logsqlite.Store) {
	t.Helper()
	notifier := commitlog.NewNotifier()
	store, err := logsqlite.Open(filepath.Join(t.TempDir(), "log.db"), notifier)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	manager := NewManager(store, notifier, store, reducer.Config{}, WithDebounce(5*time.Millisecond))
	return manager, store
}

func putRegistration(t *testing.T, store *logsqlite.Store, channel, name string) commit.Commit {
	t.Helper()
	c, err := commit.New(event.New(event.PlayerRegistered{PlayerName: name}))
	if err != nil {
		t.Fatalf("new commit: %v", err)
	}
	stored, err := store.Put(context.Background(), channel, c, "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	return stored
}

// waitForPlayers polls Report until the projection holds the expected
// player count or the deadline passes.
func waitForPlayers(t *testing.T, manager *Manager, channel string, want int) Report {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var last Report
	for time.Now().Before(deadline) {
		report, err := manager.Report(context.Background(), channel)
		if err == nil {
			last = report
			if len(report.Players) == want {
				return report
			}
		} else if apperrors.CodeOf(err) != apperrors.CodeBusy {
			t.Fatalf("report: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("projection never reached %d players, last %+v", want, last)
	return Report{}
}

func TestManagerFoldsCommits(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	if err := manager.Start(ctx, "alpha"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop(ctx, "alpha")

	putRegistration(t, store, "alpha", "josh")
	report := waitForPlayers(t, manager, "alpha", 1)

	var found bool
	for _, player := range report.Players {
		if player.Name == "josh" {
			found = true
		}
	}
	if !found {
		t.Errorf("josh missing from projection: %+v", report.Players)
	}
	if len(report.Messages) == 0 {
		t.Error("fold recorded no messages")
	}
}

func TestManagerCoalescesBursts(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	if err := manager.Start(ctx, "alpha"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop(ctx, "alpha")

	names := []string{"pete", "josh", "saul", "jess", "bill"}
	for _, name := range names {
		putRegistration(t, store, "alpha", name)
	}
	report := waitForPlayers(t, manager, "alpha", len(names))
	if len(report.Messages) != len(names) {
		t.Errorf("messages = %d, want %d", len(report.Messages), len(names))
	}
}

func TestManagerAlreadySubscribed(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	if err := manager.Start(ctx, "alpha"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop(ctx, "alpha")

	err := manager.Start(ctx, "alpha")
	if apperrors.CodeOf(err) != apperrors.CodeAlreadySubscribed {
		t.Fatalf("second start error = %v, want ALREADY_SUBSCRIBED", err)
	}
}

func TestManagerReportUnknownChannel(t *testing.T) {
	manager, _ := newTestManager(t)
	_, err := manager.Report(context.Background(), "ghost")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("report error = %v, want NOT_FOUND", err)
	}
}

func TestManagerReportReturnsCopies(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	if err := manager.Start(ctx, "alpha"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop(ctx, "alpha")

	putRegistration(t, store, "alpha", "josh")
	report := waitForPlayers(t, manager, "alpha", 1)

	for _, player := range report.Players {
		player.Name = "mutated"
	}
	fresh := waitForPlayers(t, manager, "alpha", 1)
	for _, player := range fresh.Players {
		if player.Name == "mutated" {
			t.Error("report aliased the live projection")
		}
	}
}

func TestManagerStopCheckpointsAndResumes(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	if err := manager.Start(ctx, "alpha"); err != nil {
		t.Fatalf("start: %v", err)
	}
	putRegistration(t, store, "alpha", "josh")
	waitForPlayers(t, manager, "alpha", 1)

	if err := manager.Stop(ctx, "alpha"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := manager.Report(ctx, "alpha"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("report after stop = %v, want NOT_FOUND", err)
	}

	st, _, err := store.Read(ctx, "alpha")
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(st.Players) != 1 {
		t.Errorf("snapshot players = %d, want 1", len(st.Players))
	}

	// A restarted subscription primes from the snapshot and folds only
	// newer commits.
	if err := manager.Start(ctx, "alpha"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer manager.Stop(ctx, "alpha")

	putRegistration(t, store, "alpha", "matt")
	report := waitForPlayers(t, manager, "alpha", 2)
	if len(report.Players) != 2 {
		t.Errorf("players after resume = %d, want 2", len(report.Players))
	}
}
