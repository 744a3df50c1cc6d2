package gallery

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/ztrue/tracerr"

	"progallerydl/internal/wixmedia"
)

// SlideNavigator abstracts slideshow navigation for the run loop.
type SlideNavigator interface {
	Advance(ctx context.Context) error
	ActiveSlide(ctx context.Context) (string, error)
	NextArrowState(ctx context.Context) (ArrowState, error)
}

// AssetFetcher abstracts the gated download of one asset.
type AssetFetcher interface {
	MaybeDownload(ctx context.Context, asset wixmedia.Asset) (Outcome, error)
}

// Summary reports what one run did and why it stopped.
type Summary struct {
	Slides     int
	Downloaded int
	Skipped    int
	Failed     int
	StopReason string
}

// Runner is the sequential download loop: advance one slide, resolve its
// original URL, maybe download, then evaluate the termination signals. One
// browser session, one slide, one fetch at a time.
type Runner struct {
	Nav   SlideNavigator
	Fetch AssetFetcher
	Track *Tracker
	Log   zerolog.Logger

	// WarmupAdvances are issued before the loop so the widget settles into
	// slideshow mode.
	WarmupAdvances int

	// OnSlide, when set, is invoked after each processed slide (progress
	// reporting).
	OnSlide func(Outcome)
}

// Run traverses the slideshow until a termination signal fires. Per-slide
// resolution and download failures are logged and do not stop the run;
// browser-level failures do.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for i := 0; i < r.WarmupAdvances; i++ {
		if err := r.Nav.Advance(ctx); err != nil {
			return sum, tracerr.Wrap(err)
		}
	}

	for iteration := 0; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return sum, tracerr.Wrap(err)
		}

		if r.Track.CapExceeded(iteration) {
			sum.StopReason = "slide cap reached"
			break
		}

		if err := r.Nav.Advance(ctx); err != nil {
			// Navigation that cannot proceed is a terminal signal, not an
			// error: the widget has nothing further to show.
			r.Log.Warn().Err(err).Msg("unable to advance further")
			sum.StopReason = "navigation exhausted"
			break
		}

		src, err := r.Nav.ActiveSlide(ctx)
		if errors.Is(err, ErrNoActiveSlide) {
			r.Log.Warn().Int("slide", iteration+1).Msg("no active slide after settle retries")
			sum.StopReason = "no active slide"
			break
		}
		if err != nil {
			return sum, tracerr.Wrap(err)
		}

		sum.Slides++
		r.processSlide(ctx, iteration+1, src, &sum)

		arrow, err := r.Nav.NextArrowState(ctx)
		if err != nil {
			r.Log.Warn().Err(err).Msg("next control state unreadable")
			arrow = ArrowMissing
		}

		if stop, reason := r.Track.ShouldStop(arrow); stop {
			sum.StopReason = reason
			break
		}
	}

	r.Log.Info().
		Int("slides", sum.Slides).
		Int("downloaded", sum.Downloaded).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Str("reason", sum.StopReason).
		Msg("run finished")

	return sum, nil
}

func (r *Runner) processSlide(ctx context.Context, slide int, src string, sum *Summary) {
	asset, err := wixmedia.Parse(src)
	if err != nil {
		// A URL without an asset identifier could mask dedup failures, so
		// the slide is skipped loudly rather than silently.
		r.Log.Error().Int("slide", slide).Str("src", src).Err(err).
			Msg("could not resolve original url, skipping slide")
		sum.Failed++
		return
	}

	r.Track.Observe(asset.ID)

	out, err := r.Fetch.MaybeDownload(ctx, asset)
	if err != nil {
		r.Log.Error().Int("slide", slide).Str("asset", asset.ID).Err(err).
			Msg("download failed, will retry on next run")
		sum.Failed++
		return
	}

	switch out.Status {
	case StatusDownloaded:
		sum.Downloaded++
		r.Log.Info().Int("slide", slide).Str("asset", asset.ID).
			Int64("bytes", out.Bytes).Msg("saved")
	case StatusSkipped:
		sum.Skipped++
		r.Log.Debug().Int("slide", slide).Str("asset", asset.ID).Msg("already on disk")
	}

	if r.OnSlide != nil {
		r.OnSlide(out)
	}
}
