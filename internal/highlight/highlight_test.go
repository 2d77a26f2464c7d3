package highlight

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/jobguard/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseDoc parses an HTML string for tests.
func parseDoc(t *testing.T, src string) *Document {
	t.Helper()

	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

// render serializes a document for tests.
func render(t *testing.T, doc *Document) string {
	t.Helper()

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		t.Fatalf("failed to render document: %v", err)
	}
	return buf.String()
}

// countStyleElements counts elements carrying the reserved stylesheet id.
func countStyleElements(root *html.Node) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && getAttr(n, "id") == StyleElementID {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return count
}

// TestLocate tests the case-insensitive first-occurrence search.
func TestLocate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		text      string
		phrase    string
		wantFound bool
		wantSpan  MatchSpan
	}{
		{"exact match", "send a wire transfer today", "wire transfer", true, MatchSpan{Start: 7, Length: 13}},
		{"lowercase text", "wire transfer", "Wire Transfer", true, MatchSpan{Start: 0, Length: 13}},
		{"uppercase text", "WIRE TRANSFER", "Wire Transfer", true, MatchSpan{Start: 0, Length: 13}},
		{"mixed case text", "by Wire transfer", "Wire Transfer", true, MatchSpan{Start: 3, Length: 13}},
		{"first occurrence wins", "fee, fee, fee", "fee", true, MatchSpan{Start: 0, Length: 3}},
		{"match at end", "pay the fee", "fee", true, MatchSpan{Start: 8, Length: 3}},
		{"not found", "a normal job offer", "gift card", false, MatchSpan{}},
		{"empty phrase", "anything", "", false, MatchSpan{}},
		{"empty text", "", "fee", false, MatchSpan{}},
		{"phrase longer than text", "fee", "registration fee", false, MatchSpan{}},
		{"partial match at end", "registration fe", "registration fee", false, MatchSpan{}},
		// U+0130 is two bytes and lowercases to a one-byte 'i'.
		{"offsets stay in original bytes", "İSTANBUL office", "istanbul", true, MatchSpan{Start: 0, Length: 9}},
		{"multibyte prefix", "€5000 per day", "per day", true, MatchSpan{Start: 8, Length: 7}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			span, found := Locate(tc.text, tc.phrase)
			if found != tc.wantFound {
				t.Fatalf("Locate(%q, %q) found = %v, expected %v", tc.text, tc.phrase, found, tc.wantFound)
			}
			if span != tc.wantSpan {
				t.Errorf("Locate(%q, %q) = %+v, expected %+v", tc.text, tc.phrase, span, tc.wantSpan)
			}
		})
	}
}

// TestAnnotate tests splitting a text node around a match.
func TestAnnotate(t *testing.T) {
	t.Parallel()

	t.Run("preserves content for every span position", func(t *testing.T) {
		t.Parallel()

		const text = "Pay the registration fee today"
		spans := []struct {
			name         string
			span         MatchSpan
			wantChildren int
		}{
			{"middle", MatchSpan{Start: 8, Length: 16}, 3},
			{"start", MatchSpan{Start: 0, Length: 3}, 2},
			{"end", MatchSpan{Start: 25, Length: 5}, 2},
			{"whole", MatchSpan{Start: 0, Length: len(text)}, 1},
		}

		for _, sc := range spans {
			t.Run(sc.name, func(t *testing.T) {
				t.Parallel()

				doc := parseDoc(t, "<p>"+text+"</p>")
				p := findElement(doc.Root(), atom.P)
				node := p.FirstChild

				if err := Annotate(node, sc.span, model.RiskHigh); err != nil {
					t.Fatalf("Annotate() error = %v", err)
				}

				if got := TextContent(p); got != text {
					t.Errorf("content changed: got %q, expected %q", got, text)
				}

				children := 0
				for c := p.FirstChild; c != nil; c = c.NextSibling {
					children++
					if c == node {
						t.Error("original node is still attached")
					}
				}
				if children != sc.wantChildren {
					t.Errorf("expected %d children, got %d", sc.wantChildren, children)
				}

				markers := FindMarkers(p)
				if len(markers) != 1 {
					t.Fatalf("expected 1 marker, got %d", len(markers))
				}
				want := text[sc.span.Start:sc.span.End()]
				if markers[0].Text != want {
					t.Errorf("marker text = %q, expected %q", markers[0].Text, want)
				}
				if node.Parent != nil {
					t.Error("expected original node to be detached")
				}
			})
		}
	})

	t.Run("marker carries severity class and tooltip", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>gift card</p>")
		p := findElement(doc.Root(), atom.P)

		if err := Annotate(p.FirstChild, MatchSpan{Start: 0, Length: 9}, model.RiskMedium); err != nil {
			t.Fatalf("Annotate() error = %v", err)
		}

		marker := p.FirstChild
		if !IsMarker(marker) {
			t.Fatal("expected first child to be a marker")
		}
		if got := getAttr(marker, "class"); got != "job-scam-highlight job-scam-medium" {
			t.Errorf("unexpected class %q", got)
		}
		if got := getAttr(marker, "title"); got != "Scam indicator (medium risk)" {
			t.Errorf("unexpected title %q", got)
		}
	})

	t.Run("rejects invalid input without mutating the tree", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name    string
			node    func(p *html.Node) *html.Node
			span    MatchSpan
			level   model.RiskLevel
			wantErr error
		}{
			{"nil node", func(*html.Node) *html.Node { return nil }, MatchSpan{0, 1}, model.RiskHigh, ErrNotTextNode},
			{"element node", func(p *html.Node) *html.Node { return p }, MatchSpan{0, 1}, model.RiskHigh, ErrNotTextNode},
			{"detached node", func(*html.Node) *html.Node { return newTextNode("fee") }, MatchSpan{0, 1}, model.RiskHigh, ErrDetachedNode},
			{"negative start", func(p *html.Node) *html.Node { return p.FirstChild }, MatchSpan{-1, 2}, model.RiskHigh, ErrInvalidSpan},
			{"zero length", func(p *html.Node) *html.Node { return p.FirstChild }, MatchSpan{0, 0}, model.RiskHigh, ErrInvalidSpan},
			{"past end", func(p *html.Node) *html.Node { return p.FirstChild }, MatchSpan{10, 10}, model.RiskHigh, ErrInvalidSpan},
			{"unknown level", func(p *html.Node) *html.Node { return p.FirstChild }, MatchSpan{0, 3}, model.RiskUnknown, ErrUnknownRiskLevel},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				doc := parseDoc(t, "<p>registration fee</p>")
				before := render(t, doc)
				p := findElement(doc.Root(), atom.P)

				err := Annotate(tc.node(p), tc.span, tc.level)
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if after := render(t, doc); after != before {
					t.Errorf("tree changed on error:\nbefore: %s\nafter:  %s", before, after)
				}
			})
		}
	})

	t.Run("reusing a replaced handle fails", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>no interview needed</p>")
		node := findElement(doc.Root(), atom.P).FirstChild

		if err := Annotate(node, MatchSpan{Start: 0, Length: 12}, model.RiskHigh); err != nil {
			t.Fatalf("Annotate() error = %v", err)
		}
		if err := Annotate(node, MatchSpan{Start: 0, Length: 12}, model.RiskHigh); !errors.Is(err, ErrDetachedNode) {
			t.Errorf("expected ErrDetachedNode, got %v", err)
		}
	})
}

// TestEnsureStylesInjected tests idempotent stylesheet insertion.
func TestEnsureStylesInjected(t *testing.T) {
	t.Parallel()

	t.Run("inserts exactly once", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>hello</p>")

		if !EnsureStylesInjected(doc) {
			t.Error("expected first call to insert the stylesheet")
		}
		for range 5 {
			if EnsureStylesInjected(doc) {
				t.Error("expected later calls to be no-ops")
			}
		}

		if got := countStyleElements(doc.Root()); got != 1 {
			t.Errorf("expected 1 stylesheet, got %d", got)
		}

		style := doc.ElementByID(StyleElementID)
		if style.Parent == nil || style.Parent.DataAtom != atom.Head {
			t.Error("expected stylesheet inside <head>")
		}
	})

	t.Run("respects an existing stylesheet", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><head><style id="job-scam-detector-styles"></style></head><body></body></html>`)
		if EnsureStylesInjected(doc) {
			t.Error("expected no insertion when the id is already present")
		}
		if got := countStyleElements(doc.Root()); got != 1 {
			t.Errorf("expected 1 stylesheet, got %d", got)
		}
	})

	t.Run("creates head when missing", func(t *testing.T) {
		t.Parallel()

		root := &html.Node{Type: html.DocumentNode}
		htmlElem := &html.Node{Type: html.ElementNode, DataAtom: atom.Html, Data: "html"}
		root.AppendChild(htmlElem)
		body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
		htmlElem.AppendChild(body)

		doc := NewDocument(root)
		if !EnsureStylesInjected(doc) {
			t.Fatal("expected insertion")
		}
		if htmlElem.FirstChild == nil || htmlElem.FirstChild.DataAtom != atom.Head {
			t.Error("expected a new <head> before <body>")
		}
	})

	t.Run("defines every severity class", func(t *testing.T) {
		t.Parallel()

		css := Stylesheet()
		for _, class := range []string{".job-scam-highlight", ".job-scam-high", ".job-scam-medium", ".job-scam-low"} {
			if !strings.Contains(css, class+" {") {
				t.Errorf("stylesheet missing rule for %s", class)
			}
		}
	})

	t.Run("empty document is a no-op", func(t *testing.T) {
		t.Parallel()

		if EnsureStylesInjected(NewDocument(nil)) {
			t.Error("expected no insertion into an empty document")
		}
	})
}

// TestCollectTextNodes tests the visible text snapshot.
func TestCollectTextNodes(t *testing.T) {
	t.Parallel()

	t.Run("returns visible text in document order", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><head><title>Jobs</title><style>p{}</style></head><body>`+
			`<h1>Hiring</h1><script>var x = "fee";</script><p>first <b>second</b></p>`+
			`<noscript>enable js</noscript><textarea>typed</textarea><p>third</p></body></html>`)

		nodes := CollectTextNodes(doc.Root())
		got := make([]string, len(nodes))
		for i, n := range nodes {
			got[i] = n.Data
		}

		want := []string{"Hiring", "first ", "second", "third"}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("got %q, expected %q", got, want)
		}
	})

	t.Run("skips text inside markers", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<p>pay <span class="job-scam-highlight job-scam-high">gift card</span> now</p>`)
		for _, n := range CollectTextNodes(doc.Root()) {
			if n.Data == "gift card" {
				t.Error("expected marker text to be excluded")
			}
		}
	})

	t.Run("skips svg content", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<p>visible</p><svg><text>vector fee</text></svg>`)
		for _, n := range CollectTextNodes(doc.Root()) {
			if n.Data == "vector fee" {
				t.Error("expected svg text to be excluded")
			}
		}
	})

	t.Run("skips form option text", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<select><option>gift card</option><optgroup label="x"><option>wire</option></optgroup></select>`+
			`<datalist id="d"><option>crypto</option></datalist><p>gift card</p>`)
		nodes := CollectTextNodes(doc.Root())
		if len(nodes) != 1 || nodes[0].Parent.DataAtom != atom.P {
			t.Errorf("expected only the paragraph text, got %d nodes", len(nodes))
		}
	})

	t.Run("each call is an independent snapshot", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>registration fee</p>")
		first := CollectTextNodes(doc.Body())
		if err := Annotate(first[0], MatchSpan{Start: 0, Length: 12}, model.RiskHigh); err != nil {
			t.Fatalf("Annotate() error = %v", err)
		}

		second := CollectTextNodes(doc.Body())
		if len(second) != 1 || second[0].Data != " fee" {
			t.Errorf("expected fresh snapshot with suffix only, got %d nodes", len(second))
		}
		if first[0].Parent != nil {
			t.Error("old snapshot entry should be detached")
		}
	})

	t.Run("nil root yields empty snapshot", func(t *testing.T) {
		t.Parallel()

		if nodes := CollectTextNodes(nil); len(nodes) != 0 {
			t.Errorf("expected no nodes, got %d", len(nodes))
		}
	})
}

// TestHighlightPhrases tests the full highlighting pass.
func TestHighlightPhrases(t *testing.T) {
	t.Parallel()

	t.Run("marks only the first occurrence", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<p id="a">Please send an urgent wire transfer.</p><p id="b">Another urgent wire transfer.</p>`)
		summary := HighlightPhrases(doc, []model.Phrase{{Text: "urgent wire transfer", RiskLevel: model.RiskHigh}})

		if summary.Highlighted != 1 {
			t.Errorf("expected 1 highlighted phrase, got %d", summary.Highlighted)
		}
		if got := len(FindMarkers(doc.ElementByID("a"))); got != 1 {
			t.Errorf("expected marker in first paragraph, got %d", got)
		}
		if got := len(FindMarkers(doc.ElementByID("b"))); got != 0 {
			t.Errorf("expected no marker in second paragraph, got %d", got)
		}
	})

	t.Run("marks visible text rather than select options", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<select id="s"><option>gift card</option></select><p id="p">gift card</p>`)
		summary := HighlightPhrases(doc, []model.Phrase{{Text: "gift card", RiskLevel: model.RiskHigh}})

		if summary.Highlighted != 1 {
			t.Fatalf("expected 1 highlighted phrase, got %d", summary.Highlighted)
		}
		if got := len(FindMarkers(doc.ElementByID("s"))); got != 0 {
			t.Errorf("expected no marker inside the select, got %d", got)
		}
		if got := len(FindMarkers(doc.ElementByID("p"))); got != 1 {
			t.Errorf("expected marker in the paragraph, got %d", got)
		}
	})

	t.Run("matches regardless of case", func(t *testing.T) {
		t.Parallel()

		for _, text := range []string{"wire transfer", "WIRE TRANSFER", "Wire transfer"} {
			doc := parseDoc(t, "<p>Pay by "+text+" only</p>")
			summary := HighlightPhrases(doc, []model.Phrase{{Text: "Wire Transfer", RiskLevel: model.RiskMedium}})
			if summary.Highlighted != 1 {
				t.Errorf("expected %q to be highlighted", text)
			}
			markers := FindMarkers(doc.Root())
			if len(markers) != 1 || markers[0].Text != text {
				t.Errorf("expected marker text %q, got %+v", text, markers)
			}
		}
	})

	t.Run("tolerates missing phrases", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>Guaranteed job with no interview</p>")
		summary := HighlightPhrases(doc, []model.Phrase{
			{Text: "gift card", RiskLevel: model.RiskHigh},
			{Text: "no interview", RiskLevel: model.RiskHigh},
		})

		if summary.Missed != 1 || summary.Highlighted != 1 {
			t.Errorf("expected 1 missed and 1 highlighted, got %+v", summary)
		}
		markers := FindMarkers(doc.Root())
		if len(markers) != 1 || markers[0].Text != "no interview" {
			t.Errorf("unexpected markers %+v", markers)
		}
	})

	t.Run("empty phrase list only injects styles", func(t *testing.T) {
		t.Parallel()

		const src = "<p>A regular posting</p>"
		doc := parseDoc(t, src)
		expected := parseDoc(t, src)
		EnsureStylesInjected(expected)

		summary := HighlightPhrases(doc, nil)
		if !summary.StyleInjected || summary.Requested != 0 {
			t.Errorf("unexpected summary %+v", summary)
		}
		if render(t, doc) != render(t, expected) {
			t.Error("expected no mutation beyond style injection")
		}
	})

	t.Run("severity classes are distinct", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>registration fee</p><p>act now</p><p>gmail.com</p>")
		HighlightPhrases(doc, []model.Phrase{
			{Text: "registration fee", RiskLevel: model.RiskHigh},
			{Text: "act now", RiskLevel: model.RiskMedium},
			{Text: "gmail.com", RiskLevel: model.RiskLow},
		})

		out := render(t, doc)
		for _, want := range []string{
			`<span class="job-scam-highlight job-scam-high" title="Scam indicator (high risk)">registration fee</span>`,
			`<span class="job-scam-highlight job-scam-medium" title="Scam indicator (medium risk)">act now</span>`,
			`<span class="job-scam-highlight job-scam-low" title="Scam indicator (low risk)">gmail.com</span>`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %s", want)
			}
		}
	})

	t.Run("skips malformed phrases and continues", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>Buy a gift card first</p>")
		summary := HighlightPhrases(doc, []model.Phrase{
			{Text: "", RiskLevel: model.RiskHigh},
			{Text: "first", RiskLevel: model.RiskUnknown},
			{Text: "gift card", RiskLevel: model.RiskHigh},
		})

		if summary.Skipped != 2 || summary.Highlighted != 1 {
			t.Errorf("expected 2 skipped and 1 highlighted, got %+v", summary)
		}
	})

	t.Run("rescans after each annotation", func(t *testing.T) {
		t.Parallel()

		const text = "Pay the registration fee with a gift card today"
		doc := parseDoc(t, "<p>"+text+"</p>")
		summary := HighlightPhrases(doc, []model.Phrase{
			{Text: "registration fee", RiskLevel: model.RiskHigh},
			{Text: "gift card", RiskLevel: model.RiskHigh},
			{Text: "today", RiskLevel: model.RiskLow},
		})

		if summary.Highlighted != 3 {
			t.Errorf("expected 3 highlighted, got %+v", summary)
		}
		if got := TextContent(doc.Body()); got != text {
			t.Errorf("body text changed: %q", got)
		}
	})

	t.Run("overlapping phrase inside a marker is not nested", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>urgent wire transfer</p>")
		summary := HighlightPhrases(doc, []model.Phrase{
			{Text: "urgent wire transfer", RiskLevel: model.RiskHigh},
			{Text: "wire transfer", RiskLevel: model.RiskMedium},
		})

		if summary.Highlighted != 1 || summary.Missed != 1 {
			t.Errorf("expected 1 highlighted and 1 missed, got %+v", summary)
		}
	})

	t.Run("second pass only marks occurrences outside markers", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<p>limited slots</p><p>limited slots</p>")
		phrases := []model.Phrase{{Text: "limited slots", RiskLevel: model.RiskMedium}}

		first := HighlightPhrases(doc, phrases)
		second := HighlightPhrases(doc, phrases)
		third := HighlightPhrases(doc, phrases)

		if first.Highlighted != 1 || second.Highlighted != 1 || third.Highlighted != 0 {
			t.Errorf("unexpected passes: %+v %+v %+v", first, second, third)
		}
		if second.StyleInjected {
			t.Error("expected stylesheet to be injected only once")
		}
		if got := countStyleElements(doc.Root()); got != 1 {
			t.Errorf("expected 1 stylesheet, got %d", got)
		}
		if got := len(FindMarkers(doc.Root())); got != 2 {
			t.Errorf("expected 2 markers, got %d", got)
		}
	})

	t.Run("empty document is a no-op", func(t *testing.T) {
		t.Parallel()

		summary := HighlightPhrases(NewDocument(nil), []model.Phrase{{Text: "fee", RiskLevel: model.RiskHigh}})
		if summary.Highlighted != 0 || summary.Missed != 1 || summary.StyleInjected {
			t.Errorf("unexpected summary %+v", summary)
		}
	})
}

// TestFindMarkers tests reading markers back from a document.
func TestFindMarkers(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, "<p>no experience needed and earn $500 daily</p>")
	HighlightPhrases(doc, []model.Phrase{
		{Text: "earn $500 daily", RiskLevel: model.RiskHigh},
		{Text: "no experience needed", RiskLevel: model.RiskMedium},
	})

	markers := FindMarkers(doc.Root())
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].Text != "no experience needed" || markers[0].RiskLevel != model.RiskMedium {
		t.Errorf("unexpected first marker %+v", markers[0])
	}
	if markers[1].Text != "earn $500 daily" || markers[1].RiskLevel != model.RiskHigh {
		t.Errorf("unexpected second marker %+v", markers[1])
	}
}
