package workflow

import "context"

// Page is the surface the workflow drives on the target site. The browser
// package provides the real implementation; tests use a scripted fake.
type Page interface {
	// Navigate loads the URL and waits for the page to finish loading.
	Navigate(ctx context.Context, url string) error
	// AttachFile constructs a file from the in-memory content, assigns it to
	// the file input matching selector, and fires a change event. It fails
	// when no such input exists.
	AttachFile(ctx context.Context, selector, name string, content []byte) error
	// Visible reports whether an element matching selector is currently
	// visible. A false result is not an error; polling relies on that.
	Visible(ctx context.Context, selector string) (bool, error)
	// SetValue fills the element matching selector with value and fires a
	// change event.
	SetValue(ctx context.Context, selector, value string) error
	// LabelVisible reports whether a control with the given visible text is
	// currently on the page.
	LabelVisible(ctx context.Context, label string) (bool, error)
	// ClickLabel activates the control whose visible text equals label. It
	// fails when no such control exists.
	ClickLabel(ctx context.Context, label string) error
}

// Selectors and labels on the target page's upload form. Externally
// controlled; when the site changes these are the first thing to update.
const (
	fileInputSelector   = `input[type="file"]`
	titleFieldSelector  = `input[name="title"]`
	descriptionSelector = `textarea[name="description"]`
	nextLabel           = "Next"
	publishLabel        = "Publish"
)
