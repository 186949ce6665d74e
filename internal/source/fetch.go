package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// fetchTimeout bounds a single document download.
// Separate from the run timeout because the download happens before any
// page processing starts.
const fetchTimeout = 2 * time.Minute

// maxDocumentSize limits the size of a downloaded document.
// 200MB accommodates large scanned PDFs while preventing memory or disk
// exhaustion from an unexpected response.
const maxDocumentSize = 200 * 1024 * 1024

// IsRemote reports whether the document reference is an http(s) URL rather
// than a local file path.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetch downloads a remote document into dir and returns the local file path.
// The file name is taken from the URL path, falling back to "document.pdf"
// when the URL has no usable base name.
//
// Any network or HTTP failure wraps ErrSourceUnavailable: the run cannot
// start without the document.
func Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL %q: %v", ErrSourceUnavailable, rawURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrSourceUnavailable, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", ErrSourceUnavailable, rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, rawURL, resp.StatusCode)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		name = "document.pdf"
	}
	localPath := filepath.Join(dir, name)

	f, err := os.Create(localPath) //nolint:gosec // Destination dir is caller-controlled
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrSourceUnavailable, localPath, err)
	}

	_, err = io.Copy(f, io.LimitReader(resp.Body, maxDocumentSize))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("%w: downloading %s: %v", ErrSourceUnavailable, rawURL, err)
	}

	return localPath, nil
}
