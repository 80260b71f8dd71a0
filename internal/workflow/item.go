package workflow

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var separators = regexp.MustCompile(`[-_.]+`)

// UploadItem is one local audio file queued for publishing. DerivedTitle is
// computed once from the name and reused for both the title and description
// fields on the target page.
type UploadItem struct {
	Name         string
	Content      []byte
	DerivedTitle string
}

// NewUploadItem builds an item with its derived title filled in.
func NewUploadItem(name string, content []byte) UploadItem {
	return UploadItem{
		Name:         name,
		Content:      content,
		DerivedTitle: DeriveTitle(name),
	}
}

// DeriveTitle turns a filename into display text: the extension is stripped,
// separators become spaces, and each word is title-cased.
func DeriveTitle(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = separators.ReplaceAllString(base, " ")
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return ""
	}
	return cases.Title(language.English).String(base)
}
