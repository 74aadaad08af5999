package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/width"
)

// DefaultSiteName is the suffix the site appends to every page title.
const DefaultSiteName = "전국배드민턴대회"

// Labels used by detail pages in their th/td tables
const (
	LabelApplyPeriod = "접수기간"
	LabelVenue       = "대회장소"
	LabelPhone       = "전화번호"
)

var (
	eventPeriodLabels = []string{"대회기간", "대회일시", "대회 일시"}
	regionLabels      = []string{"참가지역", "대회지역"}

	// Label line in the page text, e.g. "대회기간: 2025년 12월 5일 ..."
	eventPeriodLine = regexp.MustCompile(`(?:대회기간|대회일시|대회 일시)\s*[:：]?\s*([^\n\r]+)`)

	waveDash = strings.NewReplacer("〜", "~")
)

// Page holds everything extracted from one detail page
type Page struct {
	Fields      map[string]string
	Title       string
	EventPeriod string
	ApplyPeriod string
	Venue       string
	Region      string
	Phone       string
}

// Extractor turns a parsed detail page into a Page
type Extractor struct {
	titleSuffix *regexp.Regexp
}

// NewExtractor creates an extractor that strips "| siteName" from titles.
func NewExtractor(siteName string) *Extractor {
	return &Extractor{
		titleSuffix: regexp.MustCompile(`\s*\|\s*` + regexp.QuoteMeta(siteName) + `\s*$`),
	}
}

// Extract reads the label table, title and periods from a document.
func (e *Extractor) Extract(doc *goquery.Document) *Page {
	fields := labelFields(doc)

	return &Page{
		Fields:      fields,
		Title:       e.title(doc),
		EventPeriod: eventPeriod(doc, fields),
		ApplyPeriod: fields[LabelApplyPeriod],
		Venue:       fields[LabelVenue],
		Region:      firstField(fields, regionLabels),
		Phone:       fields[LabelPhone],
	}
}

// labelFields pairs every th with the first td that follows it in document order.
// Labels without a following td, and empty labels or values, are dropped.
func labelFields(doc *goquery.Document) map[string]string {
	fields := make(map[string]string)

	cells := doc.Find("th, td")
	nextTD := make([]int, cells.Length())
	next := -1
	for i := cells.Length() - 1; i >= 0; i-- {
		nextTD[i] = next
		if goquery.NodeName(cells.Eq(i)) == "td" {
			next = i
		}
	}

	cells.Each(func(i int, cell *goquery.Selection) {
		if goquery.NodeName(cell) != "th" || nextTD[i] < 0 {
			return
		}
		key := collapseSpace(joinText(cell, " "))
		value := collapseSpace(joinText(cells.Eq(nextTD[i]), " "))
		if key != "" && value != "" {
			fields[key] = value
		}
	})

	return fields
}

// title resolves og:title, then <title>, then the first non-empty h1/h2/h3.
func (e *Extractor) title(doc *goquery.Document) string {
	title := ""

	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
		title = strings.TrimSpace(content)
	} else if text := joinText(doc.Find("title").First(), " "); text != "" {
		title = text
	} else {
		for _, tag := range []string{"h1", "h2", "h3"} {
			if text := joinText(doc.Find(tag).First(), " "); text != "" {
				title = text
				break
			}
		}
	}

	if title == "" {
		return ""
	}
	return strings.TrimSpace(e.titleSuffix.ReplaceAllString(title, ""))
}

// eventPeriod prefers the label table and falls back to scanning the page text.
func eventPeriod(doc *goquery.Document, fields map[string]string) string {
	if period := firstField(fields, eventPeriodLabels); period != "" {
		return NormalizePeriod(period)
	}

	text := joinText(doc.Selection, "\n")
	if m := eventPeriodLine.FindStringSubmatch(text); m != nil {
		return NormalizePeriod(m[1])
	}
	return ""
}

// NormalizePeriod folds full-width forms ("～", "：", "２０２５") to ASCII,
// maps the wave dash to "~" and collapses whitespace.
func NormalizePeriod(period string) string {
	return collapseSpace(waveDash.Replace(width.Fold.String(period)))
}

func firstField(fields map[string]string, labels []string) string {
	for _, label := range labels {
		if v, ok := fields[label]; ok {
			return v
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinText collects the trimmed, non-empty text nodes under the selection and
// joins them with sep. Script, style and template contents and comments are skipped.
func joinText(sel *goquery.Selection, sep string) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
