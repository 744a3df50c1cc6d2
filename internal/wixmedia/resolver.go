// Package wixmedia resolves transformed wixstatic CDN URLs back to the
// canonical original-resolution URL of the underlying asset.
//
// The Pro Gallery widget serves resized variants such as
//
//	https://static.wixstatic.com/media/dd09ca_4f21...~mv2.jpg/v1/fill/w_1920,h_1080,.../file.jpg
//
// All variants of one logical image share the media token
// "<bucket>_<hash>~mv2.<ext>"; everything after it is a transform. Stripping
// the transform yields the URL that serves the untouched upload.
package wixmedia

import (
	"fmt"
	"regexp"
)

const mediaBase = "https://static.wixstatic.com/media/"

var assetPattern = regexp.MustCompile(`([0-9a-f]{6})_([0-9a-f]+)~mv2\.(jpe?g|png)`)

// ErrNoAssetID is returned when a URL carries no recognizable media token.
// Callers must treat it as a hard per-slide error; silently ignoring it could
// mask deduplication failures.
var ErrNoAssetID = fmt.Errorf("no wix media asset identifier in url")

// Asset is one logical gallery image, identified independently of whichever
// resized variant URL it was observed under.
type Asset struct {
	Bucket string // per-site media bucket, e.g. "dd09ca"
	ID     string // stable per-image hash; the deduplication key
	Ext    string // jpg, jpeg or png
}

// Parse extracts the asset identity from any variant URL.
func Parse(rawURL string) (Asset, error) {
	m := assetPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return Asset{}, fmt.Errorf("%w: %s", ErrNoAssetID, rawURL)
	}

	return Asset{Bucket: m[1], ID: m[2], Ext: m[3]}, nil
}

// CanonicalURL is the untransformed URL serving the original file.
func (a Asset) CanonicalURL() string {
	return fmt.Sprintf("%s%s_%s~mv2.%s", mediaBase, a.Bucket, a.ID, a.Ext)
}

// Filename is the deterministic on-disk name for the asset. The name encodes
// the asset identifier so the dedup set can be rebuilt from a directory
// listing alone.
func (a Asset) Filename() string {
	return fmt.Sprintf("%s.%s", a.ID, a.Ext)
}

// Resolve maps any variant URL to its canonical original URL. Resolving an
// already-canonical URL returns it unchanged.
func Resolve(rawURL string) (string, error) {
	a, err := Parse(rawURL)
	if err != nil {
		return "", err
	}

	return a.CanonicalURL(), nil
}
