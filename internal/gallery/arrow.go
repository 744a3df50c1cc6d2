package gallery

import (
	"context"

	"github.com/chromedp/chromedp"
	"github.com/ztrue/tracerr"
)

// ArrowState is the observed state of the slideshow's "next" control.
type ArrowState int

const (
	ArrowEnabled ArrowState = iota
	ArrowDisabled
	ArrowMissing
)

func (s ArrowState) String() string {
	switch s {
	case ArrowEnabled:
		return "enabled"
	case ArrowDisabled:
		return "disabled"
	default:
		return "missing"
	}
}

// arrowStateScript probes the known next-arrow selectors in order and reports
// the first usable one. A visually hidden arrow does not count as found.
const arrowStateScript = `
(() => {
  const selectors = [
    '` + fullscreenWrapperSel + ` button[data-hook="nav-arrow-next"]',
    '` + fullscreenWrapperSel + ` .nav-arrows-container button:last-of-type',
    '.pro-gallery-parent-container button.slideshow-arrow:last-of-type',
    'button[data-hook="nav-arrow-next"]',
  ];
  for (const sel of selectors) {
    const el = document.querySelector(sel);
    if (!el) {
      continue;
    }
    const style = window.getComputedStyle(el);
    const rect = el.getBoundingClientRect();
    const hidden = style.display === 'none' ||
      style.visibility === 'hidden' ||
      parseFloat(style.opacity || '1') === 0 ||
      el.offsetParent === null ||
      rect.width <= 0 || rect.height <= 0;
    if (hidden) {
      continue;
    }
    const disabled = el.hasAttribute('disabled') ||
      el.getAttribute('aria-disabled') === 'true' ||
      style.pointerEvents === 'none';
    return { found: true, disabled: disabled };
  }
  return { found: false, disabled: false };
})()`

type arrowProbe struct {
	Found    bool `json:"found"`
	Disabled bool `json:"disabled"`
}

// NextArrowState inspects the next control in the DOM.
func (n *Navigator) NextArrowState(ctx context.Context) (ArrowState, error) {
	var probe arrowProbe
	if err := n.session.Run(chromedp.Evaluate(arrowStateScript, &probe)); err != nil {
		return ArrowMissing, tracerr.Wrap(err)
	}

	return classifyArrow(probe), nil
}

func classifyArrow(p arrowProbe) ArrowState {
	switch {
	case !p.Found:
		return ArrowMissing
	case p.Disabled:
		return ArrowDisabled
	default:
		return ArrowEnabled
	}
}
