package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"texgen/raster"
)

// MaxDownloadBytes caps the size of a fetched image.
const MaxDownloadBytes = 64 << 20

// Downloader fetches generated images from the temporary URLs some
// providers return instead of inline data.
//
// Thread Safety: Downloader is safe for concurrent use.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a downloader. A nil client gets a default one with
// a 60 second timeout.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Downloader{client: client}
}

// Fetch downloads and decodes the image at url.
func (d *Downloader) Fetch(ctx context.Context, url string) (*raster.Image, error) {
	data, contentType, err := d.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if contentType != "" && !isImageContentType(contentType) {
		return nil, fmt.Errorf("imagegen: download returned %q, not an image", contentType)
	}

	img, err := raster.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("imagegen: downloaded image: %w", err)
	}
	return img, nil
}

// FetchBytes downloads url and returns the body and its Content-Type.
func (d *Downloader) FetchBytes(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("imagegen: URL cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: failed to create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("imagegen: download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: failed to read image data: %w", err)
	}
	if len(data) > MaxDownloadBytes {
		return nil, "", fmt.Errorf("imagegen: image exceeds %d bytes", MaxDownloadBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// isImageContentType accepts image/* and the generic binary type some
// storage buckets serve.
func isImageContentType(contentType string) bool {
	lower := strings.ToLower(contentType)
	if idx := strings.Index(lower, ";"); idx != -1 {
		lower = lower[:idx]
	}
	lower = strings.TrimSpace(lower)
	return strings.HasPrefix(lower, "image/") || lower == "application/octet-stream"
}
