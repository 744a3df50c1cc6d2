// Package gallery drives a Wix Pro Gallery slideshow through a visible
// browser session and downloads the original-resolution image behind each
// slide.
package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"github.com/ztrue/tracerr"

	"progallerydl/internal/config"
)

const (
	fullscreenWrapperSel = "#pro-gallery-pro-gallery-fullscreen-wrapper"
	galleryItemSel       = `[data-hook="item-wrapper"] img`
)

// scrollToGalleryScript brings the gallery section into view; the widget does
// not attach its click handlers until its items have been rendered.
const scrollToGalleryScript = `window.scrollTo(0, document.body.scrollHeight / 2)`

const countGalleryItemsScript = `document.querySelectorAll('` + galleryItemSel + `').length`

const clickFirstItemScript = `
(() => {
  const items = document.querySelectorAll('` + galleryItemSel + `');
  if (items.length === 0) {
    return false;
  }
  items[0].click();
  return true;
})()`

const wrapperPresentScript = `!!document.querySelector('` + fullscreenWrapperSel + `')`

// focusGalleryScript clicks the center of the fullscreen wrapper so keyboard
// events reach the widget instead of the page body.
const focusGalleryScript = `
(() => {
  const wrapper = document.querySelector('` + fullscreenWrapperSel + `');
  if (!wrapper) {
    return false;
  }
  const rect = wrapper.getBoundingClientRect();
  const el = document.elementFromPoint(rect.left + rect.width / 2, rect.top + rect.height / 2);
  (el || wrapper).click();
  return true;
})()`

// Session is the exclusively-owned browser session. It is created once, passed
// to the navigator and torn down via Close on every exit path, including fatal
// setup errors.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	cfg     config.BrowserConfig
	log     zerolog.Logger
}

// NewSession launches a visible browser. Headless operation is not supported:
// the slideshow widget suppresses its transition animations (and with them the
// active-slide markers) in headless sessions.
func NewSession(parent context.Context, cfg config.BrowserConfig, log zerolog.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("enable-automation", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug().Msgf(format, args...)
		}),
	)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		cfg:     cfg,
		log:     log,
	}

	// Launch now so a missing or broken browser surfaces as a setup error.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, tracerr.Wrap(fmt.Errorf("failed to launch browser: %w", err))
	}

	return s, nil
}

// Close tears down the browser process. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// Run executes chromedp actions against the session.
func (s *Session) Run(actions ...chromedp.Action) error {
	return chromedp.Run(s.ctx, actions...)
}

// RunWithTimeout executes actions under a per-step deadline.
func (s *Session) RunWithTimeout(d time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, d)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// OpenSlideshow performs the one-time entry sequence: load the page, scroll to
// the gallery, click the first item to enter fullscreen slideshow mode and
// focus the widget. Any failure here is fatal to the run.
func (s *Session) OpenSlideshow(url string) error {
	s.log.Info().Str("url", url).Msg("loading gallery page")

	err := s.RunWithTimeout(90*time.Second,
		chromedp.Navigate(url),
		// Wix pages have continuous background activity; a fixed wait after
		// load is more reliable than waiting for network idle.
		chromedp.Sleep(s.cfg.PageLoadWait),
		chromedp.Evaluate(scrollToGalleryScript, nil),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return tracerr.Wrap(fmt.Errorf("failed to load gallery page: %w", err))
	}

	var itemCount int
	if err := s.Run(chromedp.Evaluate(countGalleryItemsScript, &itemCount)); err != nil {
		return tracerr.Wrap(err)
	}
	if itemCount == 0 {
		return tracerr.Wrap(fmt.Errorf("no gallery items found on page"))
	}
	s.log.Debug().Int("items", itemCount).Msg("gallery section located")

	var clicked bool
	err = s.Run(
		chromedp.Evaluate(clickFirstItemScript, &clicked),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil || !clicked {
		return tracerr.Wrap(fmt.Errorf("failed to open first gallery item: %w", err))
	}

	var present bool
	if err := s.Run(chromedp.Evaluate(wrapperPresentScript, &present)); err != nil {
		return tracerr.Wrap(err)
	}
	if !present {
		return tracerr.Wrap(fmt.Errorf("fullscreen gallery wrapper did not appear"))
	}

	if err := s.Run(chromedp.Evaluate(focusGalleryScript, nil)); err != nil {
		return tracerr.Wrap(err)
	}

	s.log.Info().Msg("entered fullscreen slideshow mode")
	return nil
}
