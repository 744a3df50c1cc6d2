package wixmedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleID     = "4f21e9b0c83d45a2a6cf013b8a9d7e55"
	transformed  = "https://static.wixstatic.com/media/dd09ca_" + sampleID + "~mv2.jpg/v1/fill/w_1920,h_1280,al_c,q_90/dd09ca_" + sampleID + "~mv2.jpg"
	canonicalURL = "https://static.wixstatic.com/media/dd09ca_" + sampleID + "~mv2.jpg"
)

func TestParse(t *testing.T) {
	a, err := Parse(transformed)
	require.NoError(t, err)

	assert.Equal(t, "dd09ca", a.Bucket)
	assert.Equal(t, sampleID, a.ID)
	assert.Equal(t, "jpg", a.Ext)
}

func TestParsePNGAndJpeg(t *testing.T) {
	a, err := Parse("https://static.wixstatic.com/media/ab12cd_deadbeef01~mv2.png/v1/fit/w_800/x.png")
	require.NoError(t, err)
	assert.Equal(t, "png", a.Ext)

	a, err = Parse("https://static.wixstatic.com/media/ab12cd_deadbeef01~mv2.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", a.Ext)
}

func TestParseNoToken(t *testing.T) {
	_, err := Parse("https://static.wixstatic.com/media/logo.svg")
	assert.ErrorIs(t, err, ErrNoAssetID)
}

func TestResolveStripsTransforms(t *testing.T) {
	got, err := Resolve(transformed)
	require.NoError(t, err)
	assert.Equal(t, canonicalURL, got)
}

func TestResolveIdempotent(t *testing.T) {
	first, err := Resolve(transformed)
	require.NoError(t, err)

	second, err := Resolve(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSameAssetAcrossVariants(t *testing.T) {
	thumb := "https://static.wixstatic.com/media/dd09ca_" + sampleID + "~mv2.jpg/v1/fill/w_120,h_80,blur_2/t.jpg"

	a, err := Parse(transformed)
	require.NoError(t, err)
	b, err := Parse(thumb)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.CanonicalURL(), b.CanonicalURL())
}

func TestFilenameEncodesID(t *testing.T) {
	a := Asset{Bucket: "dd09ca", ID: sampleID, Ext: "jpg"}
	assert.Equal(t, sampleID+".jpg", a.Filename())
}
