package widget

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStorage(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		exerciseStorage(t, NewMemoryStorage())
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "widget.env")
		storage := NewFileStorage(path)
		exerciseStorage(t, storage)

		if err := storage.Set(StorageKeyAdminSession, "token value"); err != nil {
			t.Fatalf("set: %v", err)
		}
		reopened := NewFileStorage(path)
		if got, ok := reopened.Get(StorageKeyAdminSession); !ok || got != "token value" {
			t.Fatalf("expected value to survive reopening, got %q %v", got, ok)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("expected private file, got %v", perm)
		}
	})
}

func exerciseStorage(t *testing.T, storage Storage) {
	t.Helper()

	if _, ok := storage.Get(StorageKeyLanguage); ok {
		t.Fatal("expected empty storage")
	}
	if err := storage.Set(StorageKeyLanguage, "ru"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, ok := storage.Get(StorageKeyLanguage); !ok || got != "ru" {
		t.Fatalf("expected ru, got %q %v", got, ok)
	}
	if err := storage.Delete(StorageKeyLanguage); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := storage.Get(StorageKeyLanguage); ok {
		t.Fatal("expected key to be deleted")
	}
	if err := storage.Delete("AVAILABILITY_MISSING"); err != nil {
		t.Fatalf("deleting a missing key: %v", err)
	}
}

func TestPreferences(t *testing.T) {
	t.Parallel()

	u, _ := url.Parse("https://widget.example/page?lang=ro&tz=Europe%2FChisinau&view=main&ref=mail")
	prefs := ParsePreferences(u)
	if prefs.Language != "ro" || prefs.Timezone != "Europe/Chisinau" || prefs.View != "main" {
		t.Fatalf("unexpected preferences %+v", prefs)
	}
	if got := ParsePreferences(nil); got != (Preferences{}) {
		t.Fatalf("expected empty preferences, got %+v", got)
	}

	updated := WithPreferences(u, Preferences{Language: "en", View: "events"})
	q := updated.Query()
	if q.Get("lang") != "en" || q.Get("view") != "events" || q.Get("tz") != "Europe/Chisinau" || q.Get("ref") != "mail" {
		t.Fatalf("unexpected query %q", updated.RawQuery)
	}
	if u.Query().Get("lang") != "ro" {
		t.Fatal("input url must not be modified")
	}
}

func TestClipboard(t *testing.T) {
	t.Parallel()

	if err := (NoClipboard{}).WriteText(context.Background(), "x"); !errors.Is(err, ErrClipboardUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	var b strings.Builder
	WriterPrompter{W: &b}.Prompt("Copy the text:", "hello")
	if b.String() != "Copy the text:\nhello\n" {
		t.Fatalf("unexpected prompt output %q", b.String())
	}
	WriterPrompter{}.Prompt("ignored", "value")
}
