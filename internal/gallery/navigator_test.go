package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickActiveSingleMatch(t *testing.T) {
	src, err := pickActive([]slideCandidate{
		{Hidden: true, Visible: true, Src: "https://cdn/decoy-1.jpg"},
		{Hidden: false, Visible: true, Src: "https://cdn/current.jpg", Width: 1800},
		{Hidden: true, Visible: false, Src: "https://cdn/decoy-2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/current.jpg", src)
}

func TestPickActiveClonesShareOneSource(t *testing.T) {
	// mid-transition the widget can briefly mark two clones of the same
	// slide active; one distinct source is still deterministic
	src, err := pickActive([]slideCandidate{
		{Hidden: false, Visible: true, Src: "https://cdn/current.jpg"},
		{Hidden: false, Visible: true, Src: "https://cdn/current.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/current.jpg", src)
}

func TestPickActiveNone(t *testing.T) {
	_, err := pickActive([]slideCandidate{
		{Hidden: true, Visible: true, Src: "https://cdn/a.jpg"},
		{Hidden: false, Visible: false, Src: "https://cdn/b.jpg"},
		{Hidden: false, Visible: true, Src: ""},
	})
	assert.ErrorIs(t, err, ErrNoActiveSlide)
}

func TestPickActiveAmbiguous(t *testing.T) {
	_, err := pickActive([]slideCandidate{
		{Hidden: false, Visible: true, Src: "https://cdn/a.jpg"},
		{Hidden: false, Visible: true, Src: "https://cdn/b.jpg"},
	})
	assert.ErrorIs(t, err, ErrNoActiveSlide)
}

func TestPickActiveEmpty(t *testing.T) {
	_, err := pickActive(nil)
	assert.ErrorIs(t, err, ErrNoActiveSlide)
}

func TestClassifyArrow(t *testing.T) {
	assert.Equal(t, ArrowMissing, classifyArrow(arrowProbe{}))
	assert.Equal(t, ArrowDisabled, classifyArrow(arrowProbe{Found: true, Disabled: true}))
	assert.Equal(t, ArrowEnabled, classifyArrow(arrowProbe{Found: true}))
}
