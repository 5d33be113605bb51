// Package storage keeps uploaded files on the local filesystem and serves
// them back under a public URL prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// PublicPrefix is the URL prefix stored files are served from.
const PublicPrefix = "/uploads"

var ErrInvalidPath = errors.New("path is outside the upload directory")

// LocalFileStore writes files below root, one directory per kind
// (avatar -> avatars/, attachment -> attachments/).
type LocalFileStore struct {
	root string
	now  func() time.Time
}

func NewLocalFileStore(root string) (*LocalFileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{root: abs, now: time.Now}, nil
}

// Root is the directory files are written to.
func (s *LocalFileStore) Root() string { return s.root }

// Save streams content to <root>/<kind>s/<kind>-<unixms>-<rand9><ext> and
// returns the public path of the new file.
func (s *LocalFileStore) Save(ctx context.Context, kind, originalName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := kind + "s"
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", dir, err)
	}

	name := fmt.Sprintf("%s-%d-%09d%s", kind, s.now().UnixMilli(), rand.IntN(1_000_000_000), extension(originalName))
	full := filepath.Join(s.root, dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(PublicPrefix, dir, name), nil
}

// Remove deletes the file behind a public path returned by Save. Missing
// files are not an error.
func (s *LocalFileStore) Remove(ctx context.Context, publicPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *LocalFileStore) resolve(publicPath string) (string, error) {
	clean := path.Clean("/" + publicPath)
	rel, ok := strings.CutPrefix(clean, PublicPrefix+"/")
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, publicPath)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// extension keeps a short, alphanumeric, lowercased extension of name.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
