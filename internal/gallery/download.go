package gallery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/ztrue/tracerr"

	"progallerydl/internal/store"
	"progallerydl/internal/wixmedia"
)

// Status is the outcome class of one maybe-download.
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
)

func (s Status) String() string {
	if s == StatusSkipped {
		return "skipped"
	}
	return "downloaded"
}

// Outcome describes what happened to one slide's asset.
type Outcome struct {
	Status Status
	Asset  wixmedia.Asset
	Path   string
	Bytes  int64
}

// Downloader fetches canonical asset URLs, gated by the on-disk asset set.
// There is no retry policy: a failed slide is logged and retried by rerunning
// the program, which the dedup gate makes safe.
type Downloader struct {
	client    *http.Client
	assets    *store.Set
	userAgent string
	log       zerolog.Logger
}

func NewDownloader(assets *store.Set, userAgent string, log zerolog.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		assets:    assets,
		userAgent: userAgent,
		log:       log,
	}
}

// MaybeDownload checks the dedup gate first; a known asset returns a skipped
// outcome with no network request. Otherwise it performs one blocking GET of
// the canonical URL and stores the bytes atomically. On failure the asset is
// not added to the set, so a later run retries it.
func (d *Downloader) MaybeDownload(ctx context.Context, asset wixmedia.Asset) (Outcome, error) {
	if d.assets.Contains(asset.ID) {
		return Outcome{Status: StatusSkipped, Asset: asset}, nil
	}

	url := asset.CanonicalURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{}, tracerr.Wrap(err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")

	res, err := d.client.Do(req)
	if err != nil {
		return Outcome{}, tracerr.Wrap(fmt.Errorf("fetch failed for asset %s: %w", asset.ID, err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Outcome{}, tracerr.Wrap(fmt.Errorf("fetch failed for asset %s (status: %s)", asset.ID, res.Status))
	}

	path, n, err := d.assets.Save(asset.ID, asset.Ext, res.Body)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Status: StatusDownloaded, Asset: asset, Path: path, Bytes: n}, nil
}
