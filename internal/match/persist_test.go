package match

import (
	"path/filepath"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestFileStoreRoundtrip(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	s := NewMemStore()
	p := seedPosting(t, s)
	seedKeyword(t, s, p.ID, "golang")
	if err := fs.Save(s.SnapshotState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := fs.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, len(snap.Postings), 1)
	testboil.FailTestIfDiff(t, len(snap.Keywords), 1)
	testboil.FailTestIfDiff(t, snap.Postings[0].Title, p.Title)
}

func TestFileStoreLoadMissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	snap, err := fs.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, len(snap.Postings), 0)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore("not-a-redis-url"); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}
