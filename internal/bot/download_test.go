package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00fake-jpeg")
	pngBytes  = []byte("\x89PNG\r\n\x1a\nfake-png")
)

func TestDownloadTelegramFile_Success(t *testing.T) {
	var handlerCalled bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/foo.jpeg" {
			handlerCalled = true
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(jpegBytes)
		} else {
			t.Errorf("invalid request to test server: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	getFileDirectURL := func(fileID string) (string, error) {
		return fmt.Sprintf("%s/%s.jpeg", ts.URL, fileID), nil
	}

	img, err := NewImageDownloader().DownloadFromTelegramFileID(context.Background(), getFileDirectURL, "foo")
	require.NoError(t, err)

	assert.Equal(t, jpegBytes, img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.True(t, handlerCalled)
}

func TestDownloadTelegramFile_DetectsPNG(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer ts.Close()

	img, err := NewImageDownloader().DownloadFromURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestDownloadTelegramFile_URLResolutionError(t *testing.T) {
	getFileDirectURL := func(fileID string) (string, error) {
		return "", fmt.Errorf("failed to get URL")
	}

	_, err := NewImageDownloader().DownloadFromTelegramFileID(context.Background(), getFileDirectURL, "test-file-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get file URL")
}

func TestDownloadFromURL_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewImageDownloader().DownloadFromURL(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloadFromURL_RejectsNonImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not an image</body></html>"))
	}))
	defer ts.Close()

	_, err := NewImageDownloader().DownloadFromURL(context.Background(), ts.URL)
	assert.ErrorIs(t, err, errUnsupportedImage)
}

func TestDownloadFromURL_SizeLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(append(jpegBytes, []byte(strings.Repeat("x", 100))...))
	}))
	defer ts.Close()

	_, err := NewImageDownloader().WithMaxSize(50).DownloadFromURL(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too large")
}

func TestDownloadFromURL_DefaultLimitAcceptsLargePhotos(t *testing.T) {
	body := append(append([]byte(nil), jpegBytes...), make([]byte, 12*1024*1024)...)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer ts.Close()

	img, err := NewImageDownloader().DownloadFromURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Len(t, img.Data, len(body))
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, int64(20*1024*1024), NewImageDownloader().maxSize)
}

func TestDownloadFromURL_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(jpegBytes)
	}))
	defer ts.Close()

	_, err := NewImageDownloader().WithTimeout(20 * time.Millisecond).DownloadFromURL(context.Background(), ts.URL)
	assert.Error(t, err)
}
