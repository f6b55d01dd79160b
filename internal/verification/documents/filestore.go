package documents

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"verigate/internal/verification/models"
	"verigate/pkg/platform/sentinel"
)

const defaultMimeType = "application/octet-stream"

// FileStore reads uploaded files by reference.
type FileStore interface {
	ReadBytes(ctx context.Context, path string) ([]byte, error)
	MimeType(path string) string
}

// LocalStore serves files from a directory on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: filepath.Clean(root)}
}

func (s *LocalStore) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", path, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return b, nil
}

func (s *LocalStore) MimeType(path string) string {
	return MimeTypeFor(path)
}

// resolve joins path under root and refuses parent-directory segments.
func (s *LocalStore) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", fmt.Errorf("file %s: path escapes root: %w", path, sentinel.ErrNotFound)
		}
	}
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if full == s.root {
		return "", fmt.Errorf("file %q: %w", path, sentinel.ErrNotFound)
	}
	return full, nil
}

var extraMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".heic": "image/heic",
	".webp": "image/webp",
}

// MimeTypeFor infers a content type from the file extension.
func MimeTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return defaultMimeType
	}
	if t, ok := extraMimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return defaultMimeType
}

// Attachment is a loaded file ready to embed in a provider payload.
type Attachment struct {
	Ref      models.FileRef
	MimeType string
	Bytes    []byte
}

// DataURI renders data:<mime>;base64,<payload>.
func (a Attachment) DataURI() string {
	return "data:" + a.MimeType + ";base64," + base64.StdEncoding.EncodeToString(a.Bytes)
}

// Load reads ref from store.
func Load(ctx context.Context, store FileStore, ref models.FileRef) (Attachment, error) {
	b, err := store.ReadBytes(ctx, string(ref))
	if err != nil {
		return Attachment{}, err
	}
	return Attachment{Ref: ref, MimeType: store.MimeType(string(ref)), Bytes: b}, nil
}
