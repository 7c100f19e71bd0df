// Package sanitizer strips markup from user-supplied text before it is placed
// anywhere outside an escaped HTML context, such as subject lines and mail
// headers.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicy() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML, returns plain text
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes every HTML element and attribute from the input,
// returning plain text. Scripts, event handlers and javascript: URLs are all
// dropped along with their tags.
func StripHTML(s string) string {
	initPolicy()
	return strictPolicy.Sanitize(s)
}

// HeaderSafe makes a value safe for use in a mail header or subject line:
// markup is stripped and whitespace runs (including CR/LF) collapse to single
// spaces so user input cannot inject additional headers. The result is plain
// text, not HTML, so entities produced by the sanitizer are unescaped again.
func HeaderSafe(s string) string {
	v := html.UnescapeString(StripHTML(s))
	return strings.Join(strings.Fields(v), " ")
}
