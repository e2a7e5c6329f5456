package imagestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrEmptyName = errors.New("imagestore: empty file name")

// Store keeps uploaded lesson images as flat files in one directory.
type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Save writes r as "<unix millis>-<base name>" and returns that name.
func (s *Store) Save(original string, r io.Reader) (string, error) {
	base := cleanName(original)
	if base == "" {
		return "", ErrEmptyName
	}
	name := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + base

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("imagestore: create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("imagestore: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("imagestore: close %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *Store) Remove(name string) error {
	base := cleanName(name)
	if base == "" {
		return ErrEmptyName
	}
	if err := os.Remove(filepath.Join(s.dir, base)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("imagestore: remove %s: %w", base, err)
	}
	return nil
}

// Handler serves stored images; directory listings are not exposed.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.TrimSpace(base)
}
