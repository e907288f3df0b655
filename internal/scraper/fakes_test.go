package scraper

import (
	"context"
	"fmt"
	"time"
)

// fakePage is a scriptable Page for tests. Selector visibility, rendered
// HTML, and counts can all change between steps via the hook funcs.
type fakePage struct {
	htmlFunc    func() string
	visible     map[string]bool
	countFunc   func(selector string) int
	countErr    func(selector string) error
	onClick     func(selector string)
	typed       map[string]string
	evaluated   []string
	navigated   []string
	closedCount int
}

func newFakePage() *fakePage {
	return &fakePage{
		visible: map[string]bool{},
		typed:   map[string]string{},
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.visible[selector] {
		return nil
	}
	return fmt.Errorf("selector %q never became visible", selector)
}

func (p *fakePage) SendKeys(ctx context.Context, selector, text string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.typed[selector] = text
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.onClick != nil {
		p.onClick(selector)
	}
	return nil
}

func (p *fakePage) Evaluate(ctx context.Context, expression string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.evaluated = append(p.evaluated, expression)
	return nil
}

func (p *fakePage) Count(ctx context.Context, selector string, _ time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.countErr != nil {
		if err := p.countErr(selector); err != nil {
			return 0, err
		}
	}
	if p.countFunc == nil {
		return 0, nil
	}
	return p.countFunc(selector), nil
}

func (p *fakePage) HTML(ctx context.Context, _ time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.htmlFunc == nil {
		return "", nil
	}
	return p.htmlFunc(), nil
}

func (p *fakePage) Close() error {
	p.closedCount++
	return nil
}

// fakeBrowser hands out pages from newPage and counts lifecycle calls.
type fakeBrowser struct {
	newPage     func() *fakePage
	pagesOpened int
	closedCount int
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.pagesOpened++
	if b.newPage == nil {
		return newFakePage(), nil
	}
	return b.newPage(), nil
}

func (b *fakeBrowser) Close() error {
	b.closedCount++
	return nil
}

func fakeFactory(b *fakeBrowser) BrowserFactory {
	return func(ctx context.Context, headless bool) (Browser, error) {
		return b, nil
	}
}
