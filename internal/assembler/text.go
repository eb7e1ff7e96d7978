package assembler

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLength  = 50
	emptySlug      = "research-report"
	wordsPerMinute = 200
)

var (
	slugUnsafe     = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
	bulletPrefix   = regexp.MustCompile(`^(?:[•\-*–]\s*|\d+[.)]\s+)`)
)

// Slugify returns a lowercase ASCII, hyphen-separated slug of at most 50 characters.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	slug := strings.ToLower(folded)
	slug = slugUnsafe.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return emptySlug
	}
	return slug
}

// SplitSummary breaks summary text into bullet points. Lines and inline "•"
// markers delimit points; leading list markers are stripped.
func SplitSummary(summary string) []string {
	points := make([]string, 0)
	for _, line := range strings.Split(summary, "\n") {
		for _, part := range strings.Split(line, "•") {
			point := strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(part), ""))
			if point != "" {
				points = append(points, point)
			}
		}
	}
	if len(points) == 0 {
		return []string{noSummary}
	}
	return points
}

// ReadTime estimates minutes at 200 words per minute, never less than one.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Clip shortens s to fit width display cells, marking the cut with an ellipsis.
func Clip(s string, width int) string {
	s = strings.TrimSpace(s)
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
