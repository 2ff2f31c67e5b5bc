package segment

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/thumbnail"
	"github.com/gogpu/thumbnail/compose"
	"github.com/gogpu/thumbnail/imageio"
)

// State is the progress of the latest load.
type State int

const (
	// Idle means nothing has been loaded, or the last load was cancelled.
	Idle State = iota
	// Loading means a segmentation is in flight.
	Loading
	// Ready means the latest load produced both images.
	Ready
	// Failed means the latest load failed; a new upload is needed.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Token identifies one call to Loader.Load.
type Token uint64

// Result is the outcome of one load. On success Background and Foreground
// are both set; on failure Err is.
type Result struct {
	Token      Token
	Background *compose.Image
	Foreground *compose.Image
	Err        error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimeout bounds each segmentation. Zero means no limit.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithNotify sets a callback run, on the loading goroutine, with the result
// of every load that was not superseded or cancelled.
func WithNotify(fn func(Result)) LoaderOption {
	return func(l *Loader) {
		l.notify = fn
	}
}

// Loader runs segmentations in the background. Only the most recent load
// counts: starting a new one cancels the previous one, and a result that
// arrives for a superseded token is dropped. A Loader is safe for
// concurrent use.
type Loader struct {
	seg     Segmenter
	timeout time.Duration
	notify  func(Result)

	mu     sync.Mutex
	token  Token
	state  State
	result Result
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoader returns an idle loader using seg.
func NewLoader(seg Segmenter, opts ...LoaderOption) *Loader {
	l := &Loader{seg: seg}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load starts processing src, an upload as raw bytes or a data URL, and
// returns its token. The background is decoded while the segmenter runs.
func (l *Loader) Load(ctx context.Context, src []byte) Token {
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	done := make(chan struct{})

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.token++
	t := l.token
	l.state = Loading
	l.result = Result{}
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	thumbnail.Logger().Debug("segment: load", "token", uint64(t), "bytes", len(src))
	go l.run(ctx, cancel, t, src, done)
	return t
}

func (l *Loader) run(ctx context.Context, cancel context.CancelFunc, t Token, src []byte, done chan struct{}) {
	defer close(done)
	defer cancel()

	var bg, fg image.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := imageio.Decode(src)
		if err != nil {
			return fmt.Errorf("segment: background: %w", err)
		}
		bg = img
		return nil
	})
	g.Go(func() error {
		raw, err := imageio.Raw(src)
		if err != nil {
			return fmt.Errorf("segment: background: %w", err)
		}
		out, err := l.seg.Segment(gctx, raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFailed, err)
		}
		img, err := imageio.Decode(out)
		if err != nil {
			return fmt.Errorf("%w: foreground: %w", ErrFailed, err)
		}
		fg = img
		return nil
	})

	res := Result{Token: t}
	if err := g.Wait(); err != nil {
		res.Err = err
	} else {
		res.Background = compose.NewImage(bg)
		res.Foreground = compose.NewImage(fg)
	}

	l.mu.Lock()
	if t != l.token {
		l.mu.Unlock()
		thumbnail.Logger().Debug("segment: dropping stale result", "token", uint64(t))
		return
	}
	if res.Err != nil {
		l.state = Failed
	} else {
		l.state = Ready
	}
	l.result = res
	l.cancel = nil
	notify := l.notify
	l.mu.Unlock()

	if res.Err != nil {
		thumbnail.Logger().Warn("segment: load failed", "token", uint64(t), "err", res.Err)
	}
	if notify != nil {
		notify(res)
	}
}

// Cancel abandons the load in flight, if any, and returns to Idle.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Loading {
		return
	}
	l.cancel()
	l.cancel = nil
	l.token++
	l.state = Idle
	l.result = Result{}
}

// State returns the state of the latest load.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Token returns the token of the latest load.
func (l *Loader) Token() Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token
}

// Result returns the result of the latest load once it is Ready or Failed.
func (l *Loader) Result() (Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Ready && l.state != Failed {
		return Result{}, false
	}
	return l.result, true
}

// Wait blocks until the latest load finishes and returns its result. If the
// load is superseded while waiting, Wait follows the newer one. It returns
// ErrIdle when there is nothing to wait for.
func (l *Loader) Wait(ctx context.Context) (Result, error) {
	for {
		l.mu.Lock()
		state, res, done := l.state, l.result, l.done
		l.mu.Unlock()

		switch state {
		case Idle:
			return Result{}, ErrIdle
		case Ready, Failed:
			return res, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}
