package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	stateDir := t.TempDir()

	lock, err := Acquire(stateDir)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	lockPath := filepath.Join(stateDir, LockFileName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("lock file not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "pid=") {
		t.Errorf("lock file content = %q, want pid= prefix", data)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("Release() error: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("lock file still exists after release")
	}

	// Release is idempotent.
	if err := lock.Release(); err != nil {
		t.Errorf("second Release() error: %v", err)
	}
}

func TestAcquireConflict(t *testing.T) {
	stateDir := t.TempDir()

	first, err := Acquire(stateDir)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer first.Release()

	_, err = Acquire(stateDir)
	if err == nil {
		t.Fatal("second Acquire() succeeded while lock held")
	}
	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("error = %T, want *LockError", err)
	}
	if !strings.Contains(lockErr.Error(), "already running") {
		t.Errorf("error message missing guidance: %q", lockErr.Error())
	}
	if lockErr.LockPath != filepath.Join(stateDir, LockFileName) {
		t.Errorf("LockPath = %q", lockErr.LockPath)
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	stateDir := t.TempDir()

	first, err := Acquire(stateDir)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	second, err := Acquire(stateDir)
	if err != nil {
		t.Fatalf("Acquire() after release error: %v", err)
	}
	second.Release()
}

func TestExtractPID(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"pid=1234\n", 1234},
		{"pid=1234", 1234},
		{"garbage", 0},
		{"pid=", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := extractPID(tt.content); got != tt.want {
			t.Errorf("extractPID(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}
