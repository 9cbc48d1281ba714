package chromedp_renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/repository"
)

const defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36`

// ErrRendererClosed is returned by NewSession after Close.
var ErrRendererClosed = errors.New("renderer is closed")

// Options configures the headless browser.
type Options struct {
	MaxConcurrency  int
	PageLoadTimeout time.Duration
	UserAgent       string
	// ExecPath overrides the browser binary lookup.
	ExecPath string
}

// ChromedpRenderer owns one headless browser and opens a tab per session.
type ChromedpRenderer struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	tabs          *semaphore.Weighted
	timeout       time.Duration
	logger        *zap.Logger

	mu     sync.RWMutex
	closed bool
}

var _ repository.Renderer = (*ChromedpRenderer)(nil)

// NewChromedpRenderer starts the browser. It fails if no browser can be launched.
func NewChromedpRenderer(opts Options, logger *zap.Logger) (*ChromedpRenderer, error) {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty run launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("Headless browser started",
		zap.Int("max_concurrency", opts.MaxConcurrency),
		zap.Duration("page_load_timeout", opts.PageLoadTimeout),
	)

	return &ChromedpRenderer{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		tabs:          semaphore.NewWeighted(int64(opts.MaxConcurrency)),
		timeout:       opts.PageLoadTimeout,
		logger:        logger.With(zap.String("component", "renderer")),
	}, nil
}

// NewSession opens a fresh tab, waiting for a free slot if all tabs are busy.
func (r *ChromedpRenderer) NewSession(ctx context.Context) (repository.RenderSession, error) {
	if err := r.tabs.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a browser tab: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.tabs.Release(1)
		return nil, ErrRendererClosed
	}

	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
		cancel()
		r.tabs.Release(1)
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	// The main frame of a page target shares the target's ID.
	mainFrame := cdp.FrameID(chromedp.FromContext(tabCtx).Target.TargetID)
	s := &session{
		tabCtx:  tabCtx,
		cancel:  cancel,
		release: func() { r.tabs.Release(1) },
		timeout: r.timeout,
		idle:    newIdleTracker(mainFrame),
		logger:  r.logger,
	}
	chromedp.ListenTarget(tabCtx, s.onEvent)
	return s, nil
}

// Close shuts the browser down. Open sessions fail on their next render.
func (r *ChromedpRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.cancelBrowser()
	r.cancelAlloc()
	r.logger.Info("Headless browser stopped")
}

type session struct {
	tabCtx  context.Context
	cancel  context.CancelFunc
	release func()
	timeout time.Duration
	idle    *idleTracker
	logger  *zap.Logger

	closeOnce sync.Once
}

func (s *session) onEvent(ev interface{}) {
	if e, ok := ev.(*page.EventLifecycleEvent); ok {
		s.idle.observe(e)
	}
}

// idleTracker signals networkIdle of the document loaded by the current
// navigation. Events from iframes and from documents that were loading before
// arm are ignored.
type idleTracker struct {
	mainFrame cdp.FrameID

	mu       sync.Mutex
	armed    bool
	loaderID cdp.LoaderID
	idle     chan struct{}
}

func newIdleTracker(mainFrame cdp.FrameID) *idleTracker {
	return &idleTracker{mainFrame: mainFrame, idle: make(chan struct{}, 1)}
}

// arm forgets the previous document. Call it before navigating.
func (t *idleTracker) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.loaderID = ""
	select {
	case <-t.idle:
	default:
	}
}

func (t *idleTracker) observe(e *page.EventLifecycleEvent) {
	if e.FrameID != t.mainFrame {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return
	}
	switch e.Name {
	case "init":
		// A new document in the main frame, including script-driven redirects.
		t.loaderID = e.LoaderID
	case "networkIdle":
		if t.loaderID == "" || e.LoaderID != t.loaderID {
			return
		}
		select {
		case t.idle <- struct{}{}:
		default:
		}
	}
}

func (t *idleTracker) wait(ctx context.Context) error {
	select {
	case <-t.idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("network never settled: %w", ctx.Err())
	}
}

// Render navigates the session tab to url and returns the DOM once the
// network has been idle, or fails after the page load timeout.
func (s *session) Render(ctx context.Context, url string) (*entity.QuizPage, error) {
	taskCtx, cancel := context.WithTimeout(s.tabCtx, s.timeout)
	defer cancel()
	// Tie the tab task to the caller without cancelling the tab itself.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	s.idle.arm()

	var (
		location string
		html     string
	)
	start := time.Now()
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.ActionFunc(s.idle.wait),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to render %s: %w", url, err)
	}

	s.logger.Debug("Page rendered",
		zap.String("url", url),
		zap.String("location", location),
		zap.Int("html_bytes", len(html)),
		zap.Duration("duration", time.Since(start)),
	)

	if location == "" {
		location = url
	}
	return &entity.QuizPage{SourceURL: location, HTML: html}, nil
}

func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.release()
	})
}
