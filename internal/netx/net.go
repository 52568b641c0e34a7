// Package netx fetches encrypted blobs from the presigned URLs the server
// hands out for downloads and share redemptions.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooLarge is returned when a blob exceeds the caller's size limit.
var ErrTooLarge = errors.New("download exceeds size limit")

// DefaultClient is used by DownloadFromPresignedURL.
var DefaultClient = &http.Client{Timeout: 5 * time.Minute}

// DownloadFromPresignedURL GETs url and returns at most maxBytes of body.
// A non-positive maxBytes disables the limit.
func DownloadFromPresignedURL(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		if resp.ContentLength > maxBytes {
			return nil, ErrTooLarge
		}
		body = io.LimitReader(resp.Body, maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
