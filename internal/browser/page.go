package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Page drives the tab owned by a Context. It satisfies the workflow's Page
// interface; every call runs against the live DOM.
type Page struct {
	browser *Context
}

// runActions is swapped out in tests.
var runActions = chromedp.Run

// run executes chromedp actions on the tab while honoring the caller's
// context. A cancelled caller abandons the in-flight action.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- runActions(p.browser.ctx, actions...)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (p *Page) eval(ctx context.Context, script string, out any) error {
	return p.run(ctx, chromedp.Evaluate(script, out, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}))
}

// Navigate loads the URL and waits for the document body to be ready. The
// wait is bounded by the context's wait timeout so a page that never loads
// fails instead of stalling the batch.
func (p *Page) Navigate(ctx context.Context, url string) error {
	ctx, cancel := p.browser.waitContext(ctx)
	defer cancel()
	return p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// AttachFile spools the content to disk and assigns it to the matching file
// input. The browser fires the input's change event itself.
func (p *Page) AttachFile(ctx context.Context, selector, name string, content []byte) error {
	path := filepath.Join(p.browser.spoolDir, filepath.Base(name))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("spool %s: %w", name, err)
	}
	ctx, cancel := p.browser.waitContext(ctx)
	defer cancel()
	return p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery),
	)
}

// Visible reports whether an element matching selector is rendered.
func (p *Page) Visible(ctx context.Context, selector string) (bool, error) {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		return !!el && !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	})()`, selector)
	var visible bool
	if err := p.eval(ctx, script, &visible); err != nil {
		return false, err
	}
	return visible, nil
}

// SetValue fills the matching element and fires input and change events so
// the page's framework notices the edit.
func (p *Page) SetValue(ctx context.Context, selector, value string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.value = %q;
		el.dispatchEvent(new Event("input", {bubbles: true}));
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return true;
	})()`, selector, value)
	var ok bool
	if err := p.eval(ctx, script, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element matches %q", selector)
	}
	return nil
}

// labelScript finds a visible control by exact text. The action argument is
// either "find" or "click".
func labelScript(label, action string) string {
	return fmt.Sprintf(`(() => {
		const label = %q;
		const nodes = document.querySelectorAll("button, a, [role='button'], input[type='submit'], span, div");
		for (const el of nodes) {
			const text = (el.textContent || el.value || "").trim();
			if (text !== label) continue;
			if (!(el.offsetWidth || el.offsetHeight || el.getClientRects().length)) continue;
			if (%q === "click") el.click();
			return true;
		}
		return false;
	})()`, label, action)
}

// LabelVisible reports whether a control with the given visible text exists.
func (p *Page) LabelVisible(ctx context.Context, label string) (bool, error) {
	var found bool
	if err := p.eval(ctx, labelScript(label, "find"), &found); err != nil {
		return false, err
	}
	return found, nil
}

// ClickLabel activates the control with the given visible text.
func (p *Page) ClickLabel(ctx context.Context, label string) error {
	var clicked bool
	if err := p.eval(ctx, labelScript(label, "click"), &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no control labelled %q", label)
	}
	return nil
}
