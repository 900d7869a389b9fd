// Package receipts stores uploaded proof-of-payment images on the local
// filesystem and hands back the URL recorded on the payment row.
package receipts

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"orange-brew/internal/apperr"
)

// MaxUploadBytes bounds the multipart body accepted for a receipt.
const MaxUploadBytes = 5 << 20

type FSStore struct {
	Dir           string
	PublicBaseURL string
}

func NewFSStore(dir, publicBaseURL string) *FSStore {
	return &FSStore{Dir: dir, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Save writes the uploaded file under a random name, keeping the original
// extension, and returns the public URL. Only jpg/jpeg/png are accepted.
func (s *FSStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", apperr.Validation("only jpg/png receipts are allowed")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", apperr.Internal(err, "create uploads dir")
	}
	name := randomID() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", apperr.Internal(err, "save receipt")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", apperr.Internal(err, "write receipt")
	}
	return s.buildURL("/uploads/" + name), nil
}

func (s *FSStore) buildURL(path string) string {
	if s.PublicBaseURL == "" {
		return path
	}
	return s.PublicBaseURL + path
}

func randomID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
