package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// Section labels used by the retailer's product descriptions
const (
	labelOrigin      = "Xuất xứ"
	labelYear        = "Năm phát hành"
	labelStyle       = "Phong cách"
	labelGroup       = "Nhóm hương"
	labelTopNotes    = "Hương đầu"
	labelMiddleNotes = "Hương giữa"
	labelBaseNotes   = "Hương cuối"
)

// sectionLabels is the closed set of labels that end a captured section.
// A new labeled section in the descriptions must be added here, or the
// section before it will run on into the new one.
var sectionLabels = []string{
	labelOrigin, labelYear, labelStyle, labelGroup,
	labelTopNotes, labelMiddleNotes, labelBaseNotes,
	"Giới tính", "Nồng độ", "Độ lưu hương", "Độ tỏa hương",
	"Thương hiệu", "Thời điểm khuyên dùng",
}

// captureKind decides how a captured section becomes an attribute value
type captureKind int

const (
	captureText captureKind = iota
	captureYear
	captureTagList
)

// attributeRule captures the text after label up to the section boundary
type attributeRule struct {
	name   string
	label  string
	kind   captureKind
	assign func(a *domain.Attributes, value string)
}

// attributeRules is evaluated against the full text; rules do not depend on each other
var attributeRules = []attributeRule{
	{name: "origin", label: labelOrigin, kind: captureText, assign: func(a *domain.Attributes, v string) { a.Origin = v }},
	{name: "year", label: labelYear, kind: captureYear, assign: func(a *domain.Attributes, v string) { a.Year = v }},
	{name: "style", label: labelStyle, kind: captureText, assign: func(a *domain.Attributes, v string) { a.Style = v }},
	{name: "group", label: labelGroup, kind: captureTagList},
	{name: "top_notes", label: labelTopNotes, kind: captureText, assign: func(a *domain.Attributes, v string) { a.TopNotes = v }},
	{name: "middle_notes", label: labelMiddleNotes, kind: captureText, assign: func(a *domain.Attributes, v string) { a.MiddleNotes = v }},
	{name: "base_notes", label: labelBaseNotes, kind: captureText, assign: func(a *domain.Attributes, v string) { a.BaseNotes = v }},
}

var (
	// Section end: a sentence terminator, a line break, or the next known label
	sectionBoundaryPattern = compileBoundaryPattern(sectionLabels)

	yearTokenPattern = regexp.MustCompile(`\b\d{4}\b`)
	tagSeparators    = ",;"
	captureTrimChars = " \t,;:-–"
)

func compileBoundaryPattern(labels []string) *regexp.Regexp {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = regexp.QuoteMeta(label)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)|[.\n]`)
}

// vibeTagRules maps a vibe tag to the keywords that imply it. Order is fixed
// so inferred tags come out deterministically.
var vibeTagRules = []struct {
	tag      string
	keywords []string
}{
	{"Fresh", []string{"citrus", "cam", "chanh", "biển", "mát", "fresh", "aquatic", "clean", "bưởi"}},
	{"Floral", []string{"hoa", "floral", "rose", "jasmine", "huệ", "nhài", "sen", "bloom"}},
	{"Woody", []string{"gỗ", "woody", "sandalwood", "cedar", "đàn hương", "tuyết tùng", "vetiver"}},
	{"Sweet", []string{"ngọt", "sweet", "vanilla", "vani", "candy", "gourmand", "trái cây", "fruit", "honey", "mật ong"}},
	{"Spicy", []string{"cay", "spicy", "pepper", "tiêu", "warm", "ấm", "ginger", "gừng"}},
	{"Musky", []string{"xạ hương", "musk", "amber", "hổ phách", "da thuộc", "leather"}},
	{"Classy", []string{"chanel", "dior", "luxury", "sang", "classic", "elegant", "quý phái"}},
	{"Sexy", []string{"hẹn hò", "date", "night", "sexy", "quyến rũ", "gợi cảm", "thu hút"}},
	{"Office", []string{"nhẹ", "light", "office", "văn phòng", "clean", "sạch", "thanh lịch", "daily"}},
	{"Summer", []string{"mùa hè", "summer", "mát mẻ", "hot", "nắng"}},
	{"Winter", []string{"mùa đông", "winter", "ấm áp", "cold", "lạnh"}},
}

// AttributeExtractor mines structured facets from description text
type AttributeExtractor struct {
	labelPatterns      []*regexp.Regexp
	enableDebugLogging bool
}

// NewAttributeExtractor compiles the label pattern of every rule
func NewAttributeExtractor(enableDebugLogging bool) *AttributeExtractor {
	patterns := make([]*regexp.Regexp, len(attributeRules))
	for i, rule := range attributeRules {
		// The label may be followed by a colon
		patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(rule.label) + `\s*:?`)
	}
	return &AttributeExtractor{
		labelPatterns:      patterns,
		enableDebugLogging: enableDebugLogging,
	}
}

// Extract returns the attributes found in text. Attributes whose label is
// absent, or whose section is empty, are left empty. Tags is never nil.
func (e *AttributeExtractor) Extract(text string) domain.Attributes {
	text = NormalizeText(text)
	attrs := domain.Attributes{Tags: []string{}}

	for i, rule := range attributeRules {
		section, ok := e.capture(i, text)
		if !ok {
			continue
		}

		switch rule.kind {
		case captureYear:
			if year := yearTokenPattern.FindString(section); year != "" {
				rule.assign(&attrs, year)
			}
		case captureTagList:
			attrs.Tags = splitTags(section)
		default:
			rule.assign(&attrs, section)
		}

		if e.enableDebugLogging {
			log.Printf("[EXTRACT] %s: %q", rule.name, section)
		}
	}

	return attrs
}

// capture returns the trimmed section that follows rule i's label
func (e *AttributeExtractor) capture(i int, text string) (string, bool) {
	loc := e.labelPatterns[i].FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	if end := sectionBoundaryPattern.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}

	section := strings.Trim(rest, captureTrimChars)
	return section, section != ""
}

// splitTags splits a group section on commas and semicolons
func splitTags(section string) []string {
	parts := strings.FieldsFunc(section, func(r rune) bool {
		return strings.ContainsRune(tagSeparators, r)
	})
	return dedupeTags(parts)
}

// InferVibeTags returns the vibe tags whose keywords occur in text
func InferVibeTags(text string) []string {
	normalized := strings.ToLower(NormalizeText(text))

	var tags []string
	for _, rule := range vibeTagRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}
