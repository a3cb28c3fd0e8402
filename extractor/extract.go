// Package extractor turns a snapshot of the rendered feed into post
// records. Extraction is a pure function of the HTML and its options: it
// never waits, scrolls or talks to the browser, so it can be tested
// against captured DOM fixtures.
package extractor

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/xfeed/models"
	"golang.org/x/net/html"
)

// defaultBase resolves relative links when the page URL is unusable.
var defaultBase = &url.URL{Scheme: "https", Host: "x.com"}

// Options controls a single extraction pass.
type Options struct {
	// Limit caps the number of records accepted from the snapshot.
	Limit int `json:"limit"`

	// WantAuthor enables author lookup. Skipped entirely when false.
	WantAuthor bool `json:"wantAuthor"`
}

// Extract parses rawHTML and returns the batch of unique records it holds.
// pageURL is used to resolve relative links.
func Extract(rawHTML, pageURL string, opts Options) models.Batch {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return models.Batch{}
	}
	return ExtractDocument(goquery.NewDocumentFromNode(root), pageURL, opts)
}

// ExtractDocument is Extract over an already parsed document.
func ExtractDocument(doc *goquery.Document, pageURL string, opts Options) models.Batch {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		base = defaultBase
	}

	var batch models.Batch
	var blocks *goquery.Selection
	for _, s := range blockSchemes {
		blocks = doc.FindMatcher(s.matcher)
		if blocks.Length() > 0 {
			batch.Scheme = s.name
			break
		}
	}
	if batch.Scheme == "" {
		return batch
	}
	batch.Blocks = blocks.Length()

	seen := make(map[string]struct{}, batch.Blocks)
	blocks.EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if opts.Limit > 0 && len(batch.Records) >= opts.Limit {
			return false
		}
		rec, ok := extractBlock(block, base, opts)
		if !ok {
			return true
		}
		if _, dup := seen[rec.ID]; dup {
			return true
		}
		seen[rec.ID] = struct{}{}
		batch.Records = append(batch.Records, rec)
		return true
	})

	return batch
}

// extractBlock pulls one record out of a content block. Only a missing
// canonical link rejects the block; every other field degrades to its
// zero value.
func extractBlock(block *goquery.Selection, base *url.URL, opts Options) (models.Record, bool) {
	link, ok := findPermalink(block, base)
	if !ok {
		return models.Record{}, false
	}

	rec := models.Record{
		ID:       link.id,
		URL:      link.url,
		Text:     blockText(block),
		IsRepost: block.FindMatcher(socialContext).Length() > 0,
	}
	if opts.WantAuthor {
		rec.Author = blockAuthor(block, link)
	}
	if t, ok := blockTime(block); ok {
		rec.CreatedAt = &t
	}
	if label, ok := block.FindMatcher(actionBar).First().Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
		label = strings.TrimSpace(label)
		rec.EngagementRaw = &label
	}
	return rec, true
}

// findPermalink prefers the status link wrapping the timestamp, then any
// status link, and returns the first one carrying a numeric id.
func findPermalink(block *goquery.Selection, base *url.URL) (permalink, bool) {
	for _, m := range []goquery.Matcher{permalinkWithTime, permalinkAny} {
		var found permalink
		var ok bool
		block.FindMatcher(m).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			found, ok = parsePermalink(base, href)
			return !ok
		})
		if ok {
			return found, true
		}
	}
	return permalink{}, false
}

func blockText(block *goquery.Selection) string {
	if t := block.FindMatcher(tweetText).First(); t.Length() > 0 {
		return visibleText(t.Nodes)
	}

	var parts []string
	block.FindMatcher(langTagged).Each(func(_ int, s *goquery.Selection) {
		// Nested language tags are rendered by their outermost tagged
		// ancestor.
		if p := s.Parent().Closest(LangTagged); p.Length() > 0 && block.Contains(p.Get(0)) {
			return
		}
		if txt := visibleText(s.Nodes); txt != "" {
			parts = append(parts, txt)
		}
	})
	return strings.Join(parts, "\n")
}

func blockAuthor(block *goquery.Selection, link permalink) *string {
	var handle string
	block.FindMatcher(userName).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if u, err := url.Parse(href); err == nil {
			handle = handleFromPath(u.Path)
		}
		return handle == ""
	})
	if handle == "" {
		handle = link.owner
	}
	if handle == "" {
		return nil
	}
	return &handle
}

func blockTime(block *goquery.Selection) (time.Time, bool) {
	raw, ok := block.FindMatcher(timestamp).First().Attr("datetime")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
