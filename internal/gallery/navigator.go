package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"
	"github.com/ztrue/tracerr"

	"progallerydl/internal/config"
)

// ErrNoActiveSlide means no single active slide could be determined. After
// the bounded settle retries it is a terminal signal for the run, not a fatal
// error.
var ErrNoActiveSlide = errors.New("no active slide found")

// activeSlideScript collects every fullscreen item container with its
// activity marker. The widget keeps several cloned image nodes in the DOM at
// once; only the container's aria-hidden attribute reliably distinguishes the
// current slide from decoys, so node count and DOM order are never used.
const activeSlideScript = `
(() => {
  const wrapper = document.querySelector('` + fullscreenWrapperSel + `');
  if (!wrapper) {
    return [];
  }
  const out = [];
  for (const c of wrapper.querySelectorAll('[data-hook="item-container"]')) {
    const img = c.querySelector('img[data-hook="gallery-item-image-img"]');
    let src = '';
    let visible = false;
    let width = 0;
    if (img) {
      src = img.getAttribute('src') || img.getAttribute('data-src') || '';
      const style = window.getComputedStyle(img);
      const rect = img.getBoundingClientRect();
      width = rect.width;
      visible = style.display !== 'none' &&
        style.visibility !== 'hidden' &&
        parseFloat(style.opacity || '1') > 0 &&
        rect.width > 0 && rect.height > 0;
    }
    out.push({
      hidden: c.getAttribute('aria-hidden') === 'true',
      src: src,
      visible: visible,
      width: width,
    });
  }
  return out;
})()`

// clickNextArrowScript is the fallback advance path when the key event cannot
// be dispatched.
const clickNextArrowScript = `
(() => {
  const btn = document.querySelector('button[data-hook="nav-arrow-next"]');
  if (!btn || btn.hasAttribute('disabled')) {
    return false;
  }
  btn.click();
  return true;
})()`

type slideCandidate struct {
	Hidden  bool    `json:"hidden"`
	Src     string  `json:"src"`
	Visible bool    `json:"visible"`
	Width   float64 `json:"width"`
}

// Navigator sequences through the slideshow one slide at a time.
type Navigator struct {
	session        *Session
	settleAttempts int
	settleDelay    time.Duration
	advanceDelay   time.Duration
	log            zerolog.Logger
}

func NewNavigator(s *Session, cfg config.GalleryConfig, log zerolog.Logger) *Navigator {
	return &Navigator{
		session:        s,
		settleAttempts: cfg.SettleAttempts,
		settleDelay:    cfg.SettleDelay,
		advanceDelay:   cfg.AdvanceDelay,
		log:            log,
	}
}

// Advance sends a next-slide input to the page: focus the gallery and press
// ArrowRight, falling back to clicking the next arrow in-page. It returns
// after a bounded wait; the page may still be mid-transition.
func (n *Navigator) Advance(ctx context.Context) error {
	err := n.session.Run(
		chromedp.Evaluate(focusGalleryScript, nil),
		chromedp.KeyEvent(kb.ArrowRight),
	)
	if err != nil {
		n.log.Debug().Err(err).Msg("key dispatch failed, clicking next arrow")

		var clicked bool
		if err := n.session.Run(chromedp.Evaluate(clickNextArrowScript, &clicked)); err != nil {
			return tracerr.Wrap(err)
		}
		if !clicked {
			return tracerr.Wrap(fmt.Errorf("unable to advance: key dispatch failed and next arrow unreachable"))
		}
	}

	return sleepCtx(ctx, n.advanceDelay)
}

// ActiveSlide queries the DOM for the single active slide's image source,
// retrying a bounded number of times so transition animations can settle.
func (n *Navigator) ActiveSlide(ctx context.Context) (string, error) {
	for attempt := 0; attempt < n.settleAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, n.settleDelay); err != nil {
				return "", err
			}
		}

		var candidates []slideCandidate
		if err := n.session.Run(chromedp.Evaluate(activeSlideScript, &candidates)); err != nil {
			return "", tracerr.Wrap(err)
		}

		src, err := pickActive(candidates)
		if err == nil {
			return src, nil
		}

		n.log.Debug().Int("attempt", attempt+1).Int("candidates", len(candidates)).
			Msg("active slide not settled yet")
	}

	return "", ErrNoActiveSlide
}

// pickActive selects the active slide from the evaluated candidates. Exactly
// one distinct visible non-hidden source must remain; clones of the active
// slide sharing one source still count as a single match.
func pickActive(candidates []slideCandidate) (string, error) {
	srcs := make(map[string]struct{})
	var active string

	for _, c := range candidates {
		if c.Hidden || !c.Visible || c.Src == "" {
			continue
		}
		srcs[c.Src] = struct{}{}
		active = c.Src
	}

	switch len(srcs) {
	case 0:
		return "", fmt.Errorf("%w: no visible active container", ErrNoActiveSlide)
	case 1:
		return active, nil
	default:
		return "", fmt.Errorf("%w: %d distinct active containers", ErrNoActiveSlide, len(srcs))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return tracerr.Wrap(ctx.Err())
	case <-t.C:
		return nil
	}
}
