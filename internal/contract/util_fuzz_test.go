package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText checks that truncation never grows text or breaks UTF-8.
func FuzzTruncateText(f *testing.F) {
	f.Add("반도체 소자 및 그 제조 방법", 10)
	f.Add("", 0)
	f.Add("abc", 4)
	f.Add("High Bandwidth Memory stack with TSV", -1)

	f.Fuzz(func(t *testing.T, text string, width int) {
		out := TruncateText(text, width)
		if utf8.ValidString(text) && !utf8.ValidString(out) {
			t.Fatalf("invalid UTF-8 from %q", text)
		}
		if utf8.RuneCountInString(out) > utf8.RuneCountInString(text) {
			t.Fatalf("truncation grew %q to %q", text, out)
		}
	})
}

// FuzzSplitList checks that items are trimmed and non-empty.
func FuzzSplitList(f *testing.F) {
	f.Add("a@x.com,b@y.com")
	f.Add(" , ,")
	f.Fuzz(func(t *testing.T, s string) {
		for _, item := range SplitList(s) {
			if item == "" {
				t.Fatalf("empty item from %q", s)
			}
		}
	})
}
