package storage

import (
	"os"
	"strings"
	"testing"
)

func TestMediaStoreSaveInfersExtension(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewMediaStore: %v", err)
	}

	tests := []struct {
		mimetype string
		wantExt  string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".jpg"},
		{"video/mp4", ".mp4"},
	}

	for _, tt := range tests {
		path, err := store.Save([]byte("payload"), tt.mimetype)
		if err != nil {
			t.Fatalf("Save(%q): %v", tt.mimetype, err)
		}
		if !strings.HasSuffix(path, tt.wantExt) {
			t.Errorf("Save(%q) path = %q; want suffix %q", tt.mimetype, path, tt.wantExt)
		}

		data, err := os.ReadFile(path)
		if err != nil || string(data) != "payload" {
			t.Errorf("saved file unreadable or wrong content: %v", err)
		}
	}
}

func TestMediaStoreDelete(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewMediaStore: %v", err)
	}

	path, err := store.Save([]byte("payload"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should be gone after Delete")
	}

	if err := store.Delete(path); err == nil {
		t.Error("deleting twice should surface an error for the caller to swallow")
	}
}
