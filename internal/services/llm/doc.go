// Package llm talks to an OpenRouter-compatible chat completion API to
// generate shoutout topic suggestions for the upload page.
package llm
