package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
	"golang.org/x/net/html"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/pkg/utils"
)

var (
	questionIDPattern  = regexp.MustCompile(`Q\d+`)
	absoluteURLPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// Trimmed off URL matches taken from prose, e.g. "post to https://x/submit."
const trailingPunctuation = ".,;:!?)]}"

// Keys a payload preview must carry to mark the submission instructions.
var payloadKeys = []string{"email", "secret", "url"}

var invisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// textNode is a non-blank visible text node and its position in document order.
type textNode struct {
	order int
	text  string
}

// page is a parsed document plus the bookkeeping shared by the finders.
type page struct {
	doc   *goquery.Document
	order map[*html.Node]int
	texts []textNode
}

// Extract parses rendered quiz HTML and returns the submit URL, the question,
// the tables and the anchor targets. It has no side effects: the same input
// always yields the same output.
func Extract(pageURL, htmlContent string) (*entity.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	p := newPage(doc)
	return &entity.ExtractedContent{
		SubmitURL: p.submitURL(),
		Question:  p.question(),
		Tables:    p.tables(),
		Links:     p.links(pageURL),
	}, nil
}

func newPage(doc *goquery.Document) *page {
	p := &page{doc: doc, order: make(map[*html.Node]int)}
	for _, root := range doc.Nodes {
		p.walk(root, false)
	}
	return p
}

func (p *page) walk(n *html.Node, hidden bool) {
	p.order[n] = len(p.order)
	switch n.Type {
	case html.ElementNode:
		hidden = hidden || invisibleTags[n.Data]
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); !hidden && text != "" {
			p.texts = append(p.texts, textNode{order: p.order[n], text: text})
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, hidden)
	}
}

// submitURL looks for a payload preview in pre/code blocks and takes the first
// URL of the text right before it. Without one, the last URL in the visible
// text is used.
func (p *page) submitURL() string {
	var found string
	p.doc.Find("pre, code").Each(func(_ int, s *goquery.Selection) {
		if !isPayloadPreview(s.Text()) {
			return
		}
		if u := firstURL(p.textBefore(s.Nodes[0])); u != "" {
			found = u
		}
	})
	if found != "" {
		return found
	}

	var last string
	for _, t := range p.texts {
		if matches := absoluteURLPattern.FindAllString(t.text, -1); len(matches) > 0 {
			last = cleanURL(matches[len(matches)-1])
		}
	}
	return last
}

// isPayloadPreview decodes a JSON-like snippet with a data-only parser.
// Anything that is not a structured object is simply not a preview.
func isPayloadPreview(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return false
	}
	var data map[string]any
	if err := json5.Unmarshal([]byte(raw), &data); err != nil {
		return false
	}
	for _, key := range payloadKeys {
		if _, ok := data[key]; !ok {
			return false
		}
	}
	return true
}

// textBefore returns the nearest non-blank visible text preceding n.
func (p *page) textBefore(n *html.Node) string {
	pos := p.order[n]
	text := ""
	for _, t := range p.texts {
		if t.order >= pos {
			break
		}
		text = t.text
	}
	return text
}

func firstURL(text string) string {
	if m := absoluteURLPattern.FindString(text); m != "" {
		return cleanURL(m)
	}
	return ""
}

func cleanURL(raw string) string {
	return strings.TrimRight(raw, trailingPunctuation)
}

// question returns the text node carrying a question id such as "Q834", or
// the whole visible text when there is none.
func (p *page) question() string {
	for _, t := range p.texts {
		if questionIDPattern.MatchString(t.text) {
			return t.text
		}
	}
	parts := make([]string, 0, len(p.texts))
	for _, t := range p.texts {
		parts = append(parts, t.text)
	}
	return normalizeSpace(strings.Join(parts, " "))
}

func (p *page) tables() []entity.Table {
	var tables []entity.Table
	p.doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpace(cell.Text()))
			})
			rows = append(rows, cells)
		})
		tables = append(tables, entity.Table{Rows: rows})
	})
	return tables
}

// links returns anchor targets resolved against the page URL. Targets that
// cannot be downloaded (fragments, javascript:, mailto:) are skipped.
func (p *page) links(pageURL string) []string {
	var links []string
	p.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !isFetchable(href) {
			return
		}
		abs, err := utils.ToAbsoluteURL(pageURL, href)
		if err != nil {
			abs = href
		}
		links = append(links, abs)
	})
	return links
}

func isFetchable(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
