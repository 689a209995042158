package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile = "data/pepper"
)

// SetPepperPath points the pepper loader at file and forgets any cached
// pepper.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

// GetPepper returns the process pepper, loading it from the pepper file or
// creating that file on first use.
func GetPepper() (string, error) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper, nil
	}

	raw, err := LoadOrCreateSecret(pepperFile, keyLength)
	if err != nil {
		return "", fmt.Errorf("load pepper: %w", err)
	}
	pepper = string(raw)
	return pepper, nil
}

// LoadOrCreateSecret reads a base64url secret from path. When the file does
// not exist a fresh secret of size random bytes is written with mode 0600.
// The returned bytes are the encoded text, so a secret survives being copied
// between machines as plain text.
func LoadOrCreateSecret(path string, size int) ([]byte, error) {
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		s := strings.TrimSpace(string(b))
		if s == "" {
			return nil, fmt.Errorf("secret file %s is empty", path)
		}
		return []byte(s), nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	encoded := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, err
	}
	return []byte(encoded), nil
}
