// Package storage uploads product media to object storage.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Media folders under a product prefix.
const (
	FolderImages  = "images"
	FolderBanners = "banners"
	FolderFiles   = "files"
	FolderVideos  = "videos"
)

// ObjectStore stores media and answers with its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ProductKey builds products/<type>/<category>/<folder>/<unix-ms>-<nonce>-<name>.
// The nonce keeps same-named files stored in one millisecond apart.
func ProductKey(typeName, categoryName, folder, fileName string, now time.Time) string {
	return fmt.Sprintf("products/%s/%s/%s/%d-%s-%s",
		segment(typeName), segment(categoryName), folder, now.UnixMilli(), keyNonce(), segment(path.Base(fileName)))
}

func keyNonce() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

// segment keeps a path element from escaping its prefix.
func segment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	if s == "" || s == "." || s == ".." {
		return "unnamed"
	}
	return s
}

// Noop is an ObjectStore used when storage is disabled.  Uploads fail;
// deletes succeed so cleanup paths keep working.
type Noop struct{}

// ErrDisabled is returned by Noop uploads.
var ErrDisabled = errors.New("storage: object storage disabled")

func (Noop) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}

func (Noop) Delete(context.Context, string) error { return nil }
