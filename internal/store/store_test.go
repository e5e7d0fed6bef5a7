package store

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signal.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2", result.Version)
	}
	if result.Dirty {
		t.Error("migration left the database dirty")
	}
}

func TestSignalSequenceIsMonotonic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, instance := range []string{"tab-b", "tab-a", "tab-b", "tab-a"} {
		if err := db.TouchSignal(ctx, instance, time.Now()); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.SignalsSince(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("SignalsSince(0) returned %d signals, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Seq <= all[i-1].Seq {
			t.Errorf("seq %d after %d is not increasing", all[i].Seq, all[i-1].Seq)
		}
	}

	rest, err := db.SignalsSince(ctx, all[1].Seq)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(rest))
	for i, sig := range rest {
		got[i] = sig.Instance
	}
	if want := []string{"tab-b", "tab-a"}; !slices.Equal(got, want) {
		t.Errorf("SignalsSince(second) = %v, want %v", got, want)
	}

	last, ok, err := db.ReadSignal(ctx)
	if err != nil || !ok {
		t.Fatalf("ReadSignal = ok %v, err %v", ok, err)
	}
	if last.Seq != all[3].Seq {
		t.Errorf("ReadSignal seq = %d, want %d", last.Seq, all[3].Seq)
	}
}

func TestSignalsArePruned(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i := 0; i < signalRetention+10; i++ {
		if err := db.TouchSignal(ctx, "tab-a", time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	all, err := db.SignalsSince(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != signalRetention {
		t.Errorf("kept %d signals, want %d", len(all), signalRetention)
	}
}

func TestSignalerTouch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, ok, err := db.ReadSignal(ctx); err != nil || ok {
		t.Fatalf("ReadSignal on empty db = ok %v, err %v", ok, err)
	}

	at := time.UnixMilli(1767225600000)
	s := NewSignaler(db, "tab-a")
	s.now = func() time.Time { return at }
	if err := s.Touch(ctx); err != nil {
		t.Fatal(err)
	}

	sig, ok, err := db.ReadSignal(ctx)
	if err != nil || !ok {
		t.Fatalf("ReadSignal = ok %v, err %v", ok, err)
	}
	if sig.Instance != "tab-a" {
		t.Errorf("Instance = %q, want tab-a", sig.Instance)
	}
	if !sig.At.Equal(at) {
		t.Errorf("At = %v, want %v", sig.At, at)
	}
}

func TestSignalSharedAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signal.db")
	a, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if _, err := a.Migrate(); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := a.TouchSignal(context.Background(), "tab-a", time.Now()); err != nil {
		t.Fatal(err)
	}
	sig, ok, err := b.ReadSignal(context.Background())
	if err != nil || !ok {
		t.Fatalf("second connection ReadSignal = ok %v, err %v", ok, err)
	}
	if sig.Instance != "tab-a" {
		t.Errorf("Instance = %q, want tab-a", sig.Instance)
	}
}
