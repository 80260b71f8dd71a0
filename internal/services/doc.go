// Package services holds integrations with external tools and the shared
// error taxonomy used to classify their failures for HTTP responses.
package services
