package separate

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestClearDirRemovesStaleOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vocals.wav"), "old")
	writeFile(t, filepath.Join(dir, "htdemucs", "oldtrack", "drums.wav"), "old")

	if err := ClearDir(dir); err != nil {
		t.Fatalf("ClearDir failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dir not empty after ClearDir: %d entries", len(entries))
	}
}

func TestClearDirCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet", "here")
	if err := ClearDir(dir); err != nil {
		t.Fatalf("ClearDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestFlattenLiftsStemsAndDropsModelDir(t *testing.T) {
	dir := t.TempDir()
	trackDir := filepath.Join(dir, "htdemucs", "mysong")
	for _, stem := range StemNames {
		writeFile(t, filepath.Join(trackDir, stem+".wav"), stem)
	}

	d := &Demucs{}
	if err := d.flatten(dir); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	for _, stem := range StemNames {
		path := filepath.Join(dir, stem+".wav")
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("stem %s not lifted: %v", stem, err)
		}
		if string(got) != stem {
			t.Errorf("stem %s content = %q", stem, got)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "htdemucs")); !os.IsNotExist(err) {
		t.Error("model dir not removed")
	}
}

func TestFlattenPicksNewestTrackDir(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "htdemucs")

	older := filepath.Join(modelDir, "older")
	writeFile(t, filepath.Join(older, "vocals.wav"), "stale")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(modelDir, "newer", "vocals.wav"), "fresh")

	d := &Demucs{}
	if err := d.flatten(dir); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "vocals.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fresh" {
		t.Errorf("lifted stale track output: %q", got)
	}
}

func TestSeparateMissingInput(t *testing.T) {
	d := &Demucs{}
	err := d.Separate(t.Context(), filepath.Join(t.TempDir(), "absent.wav"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestLockDirSerializesSameDirectory(t *testing.T) {
	dir := t.TempDir()

	unlock, err := lockDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := lockDir(dir)
		if err != nil {
			t.Error(err)
			close(acquired)
			return
		}
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}

func TestLockDirIndependentDirectories(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		dir := t.TempDir()
		go func() {
			defer wg.Done()
			unlock, err := lockDir(dir)
			if err != nil {
				t.Error(err)
				return
			}
			defer unlock()
			time.Sleep(10 * time.Millisecond)
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent directories blocked each other")
	}
}
