// Package browser wraps chromedp behind the workflow's Page interface: one
// launched browser, one tab, explicit ownership through a Context handle.
package browser
