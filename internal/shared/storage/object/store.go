// Package object defines the photo storage contract shared by the local, S3 and
// MinIO backends.
package object

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"hairalyzer-backend/internal/shared/util"
)

// MaxObjectBytes bounds a single upload.
const MaxObjectBytes = 20 << 20

// ErrTooLarge is returned when a body exceeds MaxObjectBytes.
var ErrTooLarge = errors.New("object exceeds maximum size")

// Object describes a stored photo.
type Object struct {
	Key         string
	URL         string
	SizeBytes   int64
	ContentType string
}

// Store saves and retrieves binary objects. URLs returned by Put must be
// fetchable by the vision API.
type Store interface {
	Put(ctx context.Context, userID, fileName, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// NewKey namespaces fileName under a hash of the owner and a random prefix.
func NewKey(userID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashUserKey(userID), randomID()+"_"+name), nil
}

// ReadBody buffers r up to MaxObjectBytes and resolves the content type,
// sniffing when the declared type is empty or generic.
func ReadBody(r io.Reader, declared string) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxObjectBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxObjectBytes {
		return nil, "", ErrTooLarge
	}
	return data, ContentType(declared, data), nil
}

// ContentType prefers the declared media type and falls back to sniffing.
func ContentType(declared string, head []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(head).String()
}

// JoinURL appends an object key to a public base URL.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func randomID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
