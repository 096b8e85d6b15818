package widget

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Storage keys shared by the controller and the HTTP store.
const (
	StorageKeyLanguage     = "AVAILABILITY_LANG"
	StorageKeyView         = "AVAILABILITY_VIEW"
	StorageKeyAdminSession = "AVAILABILITY_ADMIN_SESSION"
)

// Storage is the local key/value store that survives widget restarts.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage keeps values for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage persists values in a dotenv formatted file. The file is
// rewritten on every change and created on first write.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) read() (map[string]string, error) {
	values, err := godotenv.Read(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	if err := godotenv.Write(values, f.path); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	// The file may carry the admin session token.
	if err := os.Chmod(f.path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

// Preferences are the viewer choices carried in the page URL.
type Preferences struct {
	Language string
	Timezone string
	View     string
}

// ParsePreferences reads the lang, tz and view query parameters.
func ParsePreferences(u *url.URL) Preferences {
	if u == nil {
		return Preferences{}
	}
	q := u.Query()
	return Preferences{
		Language: strings.TrimSpace(q.Get("lang")),
		Timezone: strings.TrimSpace(q.Get("tz")),
		View:     strings.TrimSpace(q.Get("view")),
	}
}

// WithPreferences returns a copy of u carrying prefs. Empty fields leave the
// existing parameter untouched.
func WithPreferences(u *url.URL, prefs Preferences) *url.URL {
	var out url.URL
	if u != nil {
		out = *u
	}
	q := out.Query()
	if prefs.Language != "" {
		q.Set("lang", prefs.Language)
	}
	if prefs.Timezone != "" {
		q.Set("tz", prefs.Timezone)
	}
	if prefs.View != "" {
		q.Set("view", prefs.View)
	}
	out.RawQuery = q.Encode()
	return &out
}
