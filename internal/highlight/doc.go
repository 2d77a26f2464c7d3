// Package highlight marks risk-bearing phrases inside an HTML document.
//
// The document is a tree parsed by golang.org/x/net/html. Node pointers are
// node identities and sibling links give document order, so the tree behaves
// like a live DOM: annotating a text node replaces it with new siblings and
// the old *html.Node must not be used afterwards.
//
// The package is built from four small pieces and one coordinator:
//   - EnsureStylesInjected adds the shared severity stylesheet once per document
//   - CollectTextNodes snapshots the visible text leaves in document order
//   - Locate finds the first case-insensitive occurrence of a phrase in a string
//   - Annotate splits a text node around a match and wraps it in a marker
//   - Highlighter.HighlightPhrases runs the pass over a list of phrases
//
// # Invalidate and rescan
//
// Every annotation mutates the tree, so the highlighter collects a fresh
// snapshot of text nodes for each phrase instead of reusing one list for the
// whole pass. Text inside existing markers is never collected, which keeps a
// second pass from nesting markers inside markers.
//
// # First occurrence only
//
// Each phrase produces at most one marker per pass, at its first plain-text
// occurrence in document order. Later occurrences are left untouched.
//
// # Usage
//
//	doc, err := highlight.Parse(r)
//	if err != nil {
//	    return err
//	}
//	summary := highlight.New().HighlightPhrases(doc, phrases)
//	err = doc.Render(w)
//
// A Document is not safe for concurrent use. Callers that highlight several
// pages in parallel give each goroutine its own Document.
package highlight
