package source

import (
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// Feed element names inside each <item>
const (
	feedTagID          = "g:id"
	feedTagTitle       = "g:title"
	feedTagDescription = "g:description"
	feedTagLink        = "g:link"
	feedTagImageLink   = "g:image_link"
	feedTagBrand       = "g:brand"
	feedTagPrice       = "g:price"
	feedTagCategory    = "g:google_product_category"
)

var (
	itemPattern  = regexp.MustCompile(`(?s)<item>(.*?)</item>`)
	cdataPattern = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

	feedTagPatterns = compileTagPatterns(
		feedTagID, feedTagTitle, feedTagDescription, feedTagLink,
		feedTagImageLink, feedTagBrand, feedTagPrice, feedTagCategory,
	)
)

func compileTagPatterns(tags ...string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(tags))
	for _, tag := range tags {
		quoted := regexp.QuoteMeta(tag)
		patterns[tag] = regexp.MustCompile(`(?s)<` + quoted + `>(.*?)</` + quoted + `>`)
	}
	return patterns
}

// extractText unwraps a CDATA payload, or decodes entities of plain text.
// Both are trimmed.
func extractText(payload string) string {
	if m := cdataPattern.FindStringSubmatch(payload); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(html.UnescapeString(payload))
}

// tagText returns the text of the first <tag> element in item, or "" if absent
func tagText(item, tag string) string {
	m := feedTagPatterns[tag].FindStringSubmatch(item)
	if m == nil {
		return ""
	}
	return extractText(m[1])
}

// ParseFeed extracts every <item> of an RSS product feed.
// Items without an id are skipped.
func ParseFeed(text string) (*Result[domain.FeedItem], error) {
	text = strings.TrimPrefix(text, byteOrderMark)
	if trimmed := strings.TrimSpace(text); trimmed != "" && !strings.HasPrefix(trimmed, "<") {
		return nil, fmt.Errorf("%w: feed is not a markup document", domain.ErrMalformedSource)
	}

	result := &Result[domain.FeedItem]{}
	for _, m := range itemPattern.FindAllStringSubmatch(text, -1) {
		content := m[1]

		item := domain.FeedItem{
			ID:          tagText(content, feedTagID),
			Title:       tagText(content, feedTagTitle),
			Description: tagText(content, feedTagDescription),
			Link:        tagText(content, feedTagLink),
			ImageLink:   tagText(content, feedTagImageLink),
			Brand:       tagText(content, feedTagBrand),
			Price:       tagText(content, feedTagPrice),
			Category:    tagText(content, feedTagCategory),
		}
		if item.ID == "" {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, item)
	}

	log.Printf("[FEED] Parsed %d items (%d skipped)", len(result.Records), result.Skipped)
	return result, nil
}
