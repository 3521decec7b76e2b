package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emrealmaoglu/trailium/internal/telemetry"
)

// LocalStorage writes photos below a media root served at a URL prefix.
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates root if needed. baseURL defaults to /media.
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if root == "" {
		root = "media"
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

func (l *LocalStorage) Backend() string { return "local" }

// Root returns the directory files are written to
func (l *LocalStorage) Root() string { return l.root }

// BaseURL returns the URL prefix files are served under
func (l *LocalStorage) BaseURL() string { return l.baseURL }

func (l *LocalStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, span := telemetry.TraceStorageCall(ctx, "put", telemetry.StorageCallAttrs{
		Backend: "local", Key: key, ContentType: contentType, SizeBytes: size,
	})
	defer span.End()

	path, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		telemetry.RecordSpanError(span, err)
		return "", fmt.Errorf("create media directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		telemetry.RecordSpanError(span, err)
		_ = os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}

	return joinURL(l.baseURL, key), nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve maps key inside root and refuses keys escaping it.
func (l *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}
