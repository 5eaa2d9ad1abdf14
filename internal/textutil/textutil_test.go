package textutil

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	got := Clean("  Kabinet \n\t kondigt   spoeddebat  aan ")
	want := "Kabinet kondigt spoeddebat aan"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Kabinet kondigt spoeddebat aan", "kabinet-kondigt-spoeddebat-aan"},
		{"Café-éigenaar wint rechtszaak!", "cafe-eigenaar-wint-rechtszaak"},
		{"  Dubbele   spaties  ", "dubbele-spaties"},
		{"???", ""},
		{"NS schrapt 40% van de “stiltecoupés”", "ns-schrapt-40-van-de-stiltecoupes"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	long := strings.Repeat("woord ", 40)
	got := Slugify(long)
	if len(got) > 80 {
		t.Errorf("Slugify() length = %d, want <= 80", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Slugify() = %q, should not end with a dash", got)
	}
}

func TestIsTooGeneric(t *testing.T) {
	generic := []string{"weer", "Nieuws", "ab", "123", "LIVE"}
	for _, s := range generic {
		if !IsTooGeneric(s) {
			t.Errorf("IsTooGeneric(%q) = false, want true", s)
		}
	}
	if IsTooGeneric("woningmarkt") {
		t.Error("IsTooGeneric(\"woningmarkt\") = true, want false")
	}
}

func TestNormalizeParagraphs(t *testing.T) {
	in := "Een. Twee. Drie. Vier. Vijf. Zes."
	got := NormalizeParagraphs(in, 2, 4)
	paragraphs := strings.Split(got, "\n\n")
	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(paragraphs), got)
	}
	for _, p := range paragraphs {
		n := len(SplitSentences(p))
		if n < 2 || n > 4 {
			t.Errorf("paragraph has %d sentences, want 2..4: %q", n, p)
		}
	}
}

func TestNormalizeParagraphsDiscardsLineBreaks(t *testing.T) {
	in := "Eerste zin.\nTweede zin.\n\nDerde zin."
	got := NormalizeParagraphs(in, 2, 4)
	if strings.Contains(got, "\n") && !strings.Contains(got, "\n\n") {
		t.Errorf("single line breaks should be gone: %q", got)
	}
	if !strings.Contains(got, "Eerste zin. Tweede zin. Derde zin.") {
		t.Errorf("sentences should be reflowed together: %q", got)
	}
}

func TestNormalizeParagraphsEmpty(t *testing.T) {
	if got := NormalizeParagraphs("   ", 2, 4); got != "" {
		t.Errorf("NormalizeParagraphs(blank) = %q, want empty", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Dat klopt. Echt waar! Of niet? Einde zonder punt")
	if len(got) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %v", len(got), got)
	}
	if got[3] != "Einde zonder punt" {
		t.Errorf("trailing fragment = %q", got[3])
	}
}

func TestRemoveAuthorSignature(t *testing.T) {
	in := "Het artikel eindigt hier.\n\n— Joris van Kempen"
	got := RemoveAuthorSignature(in)
	if strings.Contains(got, "Joris") {
		t.Errorf("signature not removed: %q", got)
	}
	if !strings.HasSuffix(got, "eindigt hier.") {
		t.Errorf("body should be preserved: %q", got)
	}
}

func TestRemoveAuthorSignatureNoSignature(t *testing.T) {
	in := "Gewoon een slotzin zonder ondertekening."
	if got := RemoveAuthorSignature(in); got != in {
		t.Errorf("RemoveAuthorSignature() = %q, want unchanged", got)
	}
}

func TestClampHeadingLevels(t *testing.T) {
	in := "## Goed\n\n### Te diep\n\n#### Nog dieper"
	got := ClampHeadingLevels(in)
	if strings.Contains(got, "###") {
		t.Errorf("deep headings should be clamped: %q", got)
	}
	if !strings.Contains(got, "## Goed") {
		t.Errorf("level-two heading should be untouched: %q", got)
	}
}

func TestTrimToMaxWordsPreserveParagraphs(t *testing.T) {
	in := "een twee drie\n\nvier vijf zes\n\nzeven acht negen"
	got := TrimToMaxWordsPreserveParagraphs(in, 7)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("partial paragraph should end with ellipsis: %q", got)
	}
	words := strings.Fields(strings.ReplaceAll(got, "…", ""))
	if len(words) != 7 {
		t.Errorf("expected 7 words, got %d: %q", len(words), got)
	}
}

func TestFallbackTitleMentionsTrend(t *testing.T) {
	got := FallbackTitle("woningmarkt")
	if !strings.Contains(got, "woningmarkt") {
		t.Errorf("FallbackTitle() = %q, should contain the trend", got)
	}
}
