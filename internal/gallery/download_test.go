package gallery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progallerydl/internal/logging"
	"progallerydl/internal/store"
	"progallerydl/internal/wixmedia"
)

const testUA = "test-agent"

// testDownloader points the downloader's client at an httptest server by
// rewriting all request hosts.
func testDownloader(t *testing.T, assets *store.Set, srv *httptest.Server) *Downloader {
	t.Helper()

	d := NewDownloader(assets, testUA, logging.Nop())
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	d.client = srv.Client()
	d.client.Transport = &rewriteTransport{base: srv.Client().Transport, host: target.Host}

	return d
}

type rewriteTransport struct {
	base http.RoundTripper
	host string
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = rt.host
	return rt.base.RoundTrip(req)
}

func asset(id string) wixmedia.Asset {
	return wixmedia.Asset{Bucket: "dd09ca", ID: id, Ext: "jpg"}
}

func TestMaybeDownloadFetchesAndStores(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	assets, err := store.Open(t.TempDir())
	require.NoError(t, err)
	d := testDownloader(t, assets, srv)

	out, err := d.MaybeDownload(context.Background(), asset("deadbeef01"))
	require.NoError(t, err)

	assert.Equal(t, StatusDownloaded, out.Status)
	assert.Equal(t, int64(9), out.Bytes)
	assert.Equal(t, "/media/dd09ca_deadbeef01~mv2.jpg", gotPath)
	assert.Equal(t, testUA, gotUA)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))
	assert.True(t, assets.Contains("deadbeef01"))
}

func TestMaybeDownloadSkipsKnownAssetWithoutRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	assets, err := store.Open(t.TempDir())
	require.NoError(t, err)
	d := testDownloader(t, assets, srv)

	first, err := d.MaybeDownload(context.Background(), asset("deadbeef01"))
	require.NoError(t, err)
	require.Equal(t, StatusDownloaded, first.Status)

	second, err := d.MaybeDownload(context.Background(), asset("deadbeef01"))
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, 1, requests, "skip must issue no network request")
}

func TestMaybeDownloadDedupAcrossVariants(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	assets, err := store.Open(t.TempDir())
	require.NoError(t, err)
	d := testDownloader(t, assets, srv)

	// two URLs sharing one asset identifier trigger at most one fetch
	a, err := wixmedia.Parse("https://static.wixstatic.com/media/dd09ca_feedface01~mv2.jpg/v1/fill/w_1920/a.jpg")
	require.NoError(t, err)
	b, err := wixmedia.Parse("https://static.wixstatic.com/media/dd09ca_feedface01~mv2.jpg/v1/fill/w_120,blur_2/b.jpg")
	require.NoError(t, err)

	_, err = d.MaybeDownload(context.Background(), a)
	require.NoError(t, err)
	out, err := d.MaybeDownload(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, out.Status)
	assert.Equal(t, 1, requests)
}

func TestMaybeDownloadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	assets, err := store.Open(t.TempDir())
	require.NoError(t, err)
	d := testDownloader(t, assets, srv)

	_, err = d.MaybeDownload(context.Background(), asset("deadbeef01"))
	require.Error(t, err)

	// the failed asset stays out of the set so a rerun retries it
	assert.False(t, assets.Contains("deadbeef01"))
}

func TestMaybeDownloadEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assets, err := store.Open(t.TempDir())
	require.NoError(t, err)
	d := testDownloader(t, assets, srv)

	_, err = d.MaybeDownload(context.Background(), asset("deadbeef01"))
	require.Error(t, err)
	assert.False(t, assets.Contains("deadbeef01"))
}
