// Package textutil provides pure text helpers used across the pipeline:
// whitespace cleaning, slug derivation, paragraph normalization, and
// sentence-boundary handling. No I/O.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	wsRe          = regexp.MustCompile(`\s+`)
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugDashRe    = regexp.MustCompile(`-+`)
	signatureRe   = regexp.MustCompile(`\n{1,2}—\s*[^\n]{1,80}\s*$`)
	multiBlankRe  = regexp.MustCompile(`\n{3,}`)
	deepHeadingRe = regexp.MustCompile(`(?m)^#{3,}\s+`)
	letterRe      = regexp.MustCompile(`[a-zA-ZÀ-ÿ]`)
)

// genericTrendWords are whole trend titles too generic to write about.
var genericTrendWords = map[string]bool{
	"weer": true, "nieuws": true, "update": true, "live": true,
	"today": true, "vandaag": true, "breaking": true,
}

// Clean collapses all whitespace runs to single spaces and trims.
func Clean(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// Clamp trims s and truncates it to at most n characters.
func Clamp(s string, n int) string {
	t := strings.TrimSpace(s)
	if len(t) > n {
		return t[:n]
	}
	return t
}

// IsTooGeneric reports whether a trend title is too generic to anchor an
// article: a banned word, too short, or containing no letters.
func IsTooGeneric(t string) bool {
	low := strings.ToLower(strings.TrimSpace(t))
	if genericTrendWords[low] {
		return true
	}
	if len(low) <= 2 {
		return true
	}
	return !letterRe.MatchString(t)
}

// FallbackTitle builds a deterministic headline for a trend when the
// generator returns none.
func FallbackTitle(trend string) string {
	return "Nederland reageert op “" + trend + "” met een mix van urgentie en uitstel"
}

// FallbackSubtitle is the house subtitle when the generator returns none.
const FallbackSubtitle = "Het land reageert met urgentie en uitstel."

// Slugify derives a URL-safe slug from a title: lowercase, diacritics
// folded, non-alphanumerics dropped, spaces dashed, capped at 80 bytes.
func Slugify(s string) string {
	low := strings.ToLower(s)

	// Fold diacritics: decompose, then drop combining marks.
	decomposed := norm.NFKD.String(low)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	out := slugInvalidRe.ReplaceAllString(b.String(), "")
	out = strings.TrimSpace(out)
	out = wsRe.ReplaceAllString(out, "-")
	out = slugDashRe.ReplaceAllString(out, "-")
	if len(out) > 80 {
		out = out[:80]
	}
	return strings.Trim(out, "-")
}

// SplitSentences splits flattened text on sentence boundaries (., !, ?
// followed by whitespace). A trailing fragment without a terminator is
// kept as its own sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		cur.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') &&
			(i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// NormalizeParagraphs reflows text into paragraphs of minSentences to
// maxSentences sentences each, joined with blank lines. Existing line
// breaks are discarded.
func NormalizeParagraphs(text string, minSentences, maxSentences int) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}

	flattened := strings.ReplaceAll(s, "\r", "")
	flattened = wsRe.ReplaceAllString(strings.ReplaceAll(flattened, "\n", " "), " ")
	sentences := SplitSentences(strings.TrimSpace(flattened))
	if len(sentences) == 0 {
		return ""
	}

	var paragraphs []string
	i := 0
	for i < len(sentences) {
		remaining := len(sentences) - i
		take := 3
		if remaining == 2 {
			take = 2
		}
		if remaining == 4 {
			take = 4
		}
		if remaining < minSentences {
			take = remaining
		}

		if take < minSentences {
			take = minSentences
		}
		if take > maxSentences {
			take = maxSentences
		}
		if take > remaining {
			take = remaining
		}

		paragraphs = append(paragraphs, strings.Join(sentences[i:i+take], " "))
		i += take
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n"))
}

// NormalizeInvestigationMarkdown tidies long-form markdown: trailing
// per-line whitespace removed, blank-line runs collapsed.
func NormalizeInvestigationMarkdown(text string) string {
	s := strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(multiBlankRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// ClampHeadingLevels rewrites headings deeper than level two to level
// two.
func ClampHeadingLevels(text string) string {
	return deepHeadingRe.ReplaceAllString(text, "## ")
}

// TrimToMaxWordsPreserveParagraphs truncates text to at most maxWords
// words, keeping whole paragraphs where possible and ending a partial
// paragraph with an ellipsis.
func TrimToMaxWordsPreserveParagraphs(text string, maxWords int) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}

	var out []string
	count := 0
	for _, p := range strings.Split(s, "\n\n") {
		words := strings.Fields(p)
		if count+len(words) <= maxWords {
			out = append(out, p)
			count += len(words)
			continue
		}
		remaining := maxWords - count
		if remaining > 0 {
			out = append(out, strings.Join(words[:remaining], " ")+"…")
		}
		break
	}

	return strings.TrimSpace(strings.Join(out, "\n\n"))
}

// RemoveAuthorSignature strips a trailing "— name" signature line.
func RemoveAuthorSignature(text string) string {
	return strings.TrimSpace(signatureRe.ReplaceAllString(text, ""))
}
