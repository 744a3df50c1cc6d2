package gallery

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/ztrue/tracerr"
)

const warmupScriptID = "wix-warmup-data"

const readWarmupScript = `
(() => {
  const el = document.getElementById('` + warmupScriptID + `');
  return el ? el.textContent : '';
})()`

// ErrNoWarmup means the page carried no usable warmup payload for the gallery
// component. The expected-count termination signal is then unavailable and the
// run relies on the next-control state plus the slide cap.
var ErrNoWarmup = errors.New("gallery warmup metadata not found")

// Metadata is the gallery's self-declared description from the inline warmup
// payload. TotalItems is a termination hint, not an iteration driver: the
// widget may hold fewer live slides than it declares.
type Metadata struct {
	TotalItems int
	GalleryID  string
}

type warmupDoc struct {
	AppsWarmupData map[string]map[string]json.RawMessage `json:"appsWarmupData"`
}

type warmupGalleryData struct {
	TotalItemsCount int `json:"totalItemsCount"`
}

type warmupAppSettings struct {
	GalleryID string `json:"galleryId"`
}

// WarmupMetadata reads the inline warmup JSON from the page and extracts the
// entry for the given gallery component.
func (s *Session) WarmupMetadata(componentID string) (Metadata, error) {
	var raw string
	if err := s.Run(chromedp.Evaluate(readWarmupScript, &raw)); err != nil {
		return Metadata{}, tracerr.Wrap(err)
	}

	return parseWarmup(raw, componentID)
}

func parseWarmup(raw, componentID string) (Metadata, error) {
	if raw == "" {
		return Metadata{}, ErrNoWarmup
	}

	var doc warmupDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrNoWarmup, err)
	}

	galleryKey := componentID + "_galleryData"
	settingsKey := componentID + "_appSettings"

	for _, payload := range doc.AppsWarmupData {
		rawGallery, ok := payload[galleryKey]
		if !ok {
			continue
		}

		var gd warmupGalleryData
		if err := json.Unmarshal(rawGallery, &gd); err != nil {
			return Metadata{}, fmt.Errorf("%w: %v", ErrNoWarmup, err)
		}

		meta := Metadata{TotalItems: gd.TotalItemsCount}
		if rawSettings, ok := payload[settingsKey]; ok {
			var as warmupAppSettings
			if err := json.Unmarshal(rawSettings, &as); err == nil {
				meta.GalleryID = as.GalleryID
			}
		}

		return meta, nil
	}

	return Metadata{}, ErrNoWarmup
}
