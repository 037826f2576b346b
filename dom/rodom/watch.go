package rodom

import (
	"context"
	"fmt"
	"time"
)

// observerJS installs a page-wide MutationObserver that pings the
// mutation binding. Coalescing happens on the Go side; the JS callback
// deliberately carries no payload, a receive only means "changed".
const observerJS = `() => {
	if (window.__zkObserver) {
		return;
	}
	const mo = new MutationObserver(() => {
		window.` + mutationBinding + `("1");
	});
	mo.observe(document.documentElement, {
		childList: true,
		subtree: true,
		attributes: true,
		characterData: true,
	});
	window.__zkObserver = mo;
}`

// Watch injects the MutationObserver and returns a coalesced tick
// channel. Ticks are trailing-edge debounced: a burst of mutations
// yields one tick after the window goes quiet. The channel closes when
// ctx is done.
func (d *Document) Watch(ctx context.Context) (<-chan struct{}, error) {
	d.mu.Lock()
	if d.watching {
		d.mu.Unlock()
		return nil, fmt.Errorf("rodom: document already watched")
	}
	d.watching = true
	d.mu.Unlock()

	if _, err := d.page.Eval(observerJS); err != nil {
		return nil, fmt.Errorf("rodom: inject mutation observer: %w", err)
	}

	ticks := make(chan struct{}, 1)
	go d.debounceLoop(ctx, ticks)
	return ticks, nil
}

// debounceLoop converts raw mutation pings into trailing-edge ticks.
// Each ping restarts the window; a tick fires when the window expires,
// or immediately once pings since the last tick reach the max threshold
// (a page mutating continuously must not starve the reconciler).
func (d *Document) debounceLoop(ctx context.Context, ticks chan<- struct{}) {
	defer close(ticks)

	var timer *time.Timer
	var timerC <-chan time.Time
	pings := 0

	emit := func() {
		pings = 0
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
		select {
		case ticks <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-d.rawMut:
			pings++
			if pings >= d.debounceMax {
				emit()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(d.debounce)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			emit()
		}
	}
}
