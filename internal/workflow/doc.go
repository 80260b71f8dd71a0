// Package workflow drives the target site's upload form for each local audio
// file in turn: attach, wait for the upload to register, fill the derived
// metadata, and click through next and publish. Files are processed strictly
// one at a time and the first failure aborts the whole batch.
package workflow
