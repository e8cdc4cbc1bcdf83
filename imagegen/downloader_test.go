package imagegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDownloaderFetch(t *testing.T) {
	png := pngFixture(t, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		case "/octet":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(png)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html></html>"))
		case "/garbage":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("not a png"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client())

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/ok.png", false},
		{"/octet", false},
		{"/page", true},
		{"/garbage", true},
		{"/missing", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			img, err := d.Fetch(context.Background(), srv.URL+tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if img.Width != 16 || img.Height != 16 {
				t.Errorf("image = %dx%d, want 16x16", img.Width, img.Height)
			}
		})
	}

	if _, err := d.Fetch(context.Background(), ""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestIsImageContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"image/png", true},
		{"IMAGE/JPEG; q=1", true},
		{"application/octet-stream", true},
		{"text/html", false},
		{"application/json", false},
	}
	for _, tt := range tests {
		if got := isImageContentType(tt.ct); got != tt.want {
			t.Errorf("isImageContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}
