package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
)

// Page is the narrow contract the scraper needs from one browser tab. Every
// waiting operation takes an explicit upper bound and reports a plain error;
// callers translate timeouts into the typed taxonomy.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	SendKeys(ctx context.Context, selector, text string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Evaluate(ctx context.Context, expression string, timeout time.Duration) error
	Count(ctx context.Context, selector string, timeout time.Duration) (int, error)
	HTML(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}

// Browser owns a headless-browser process and hands out pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// BrowserFactory launches a browser. Swappable so tests run without Chrome.
type BrowserFactory func(ctx context.Context, headless bool) (Browser, error)

// chromeBrowser drives a local Chrome over the DevTools protocol.
type chromeBrowser struct {
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewChromeBrowser launches a headless Chrome process. The returned browser
// must be closed to tear the process down.
func NewChromeBrowser(ctx context.Context, headless bool) (Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces launch failures here instead of
	// on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &chromeBrowser{
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
	}, nil
}

func (b *chromeBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	return &chromePage{ctx: tabCtx, cancel: tabCancel}, nil
}

func (b *chromeBrowser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions against the tab under a bounded deadline.
func (p *chromePage) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.run(timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.run(timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromePage) SendKeys(ctx context.Context, selector, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.run(timeout, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.run(timeout, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) Evaluate(ctx context.Context, expression string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.run(timeout, chromedp.Evaluate(expression, nil))
}

func (p *chromePage) Count(ctx context.Context, selector string, timeout time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	expr := "document.querySelectorAll(" + strconv.Quote(selector) + ").length"
	if err := p.run(timeout, chromedp.Evaluate(expr, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *chromePage) HTML(ctx context.Context, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := p.run(timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
