package algo

import (
	"strings"

	"github.com/semiconip/patentspike/schema"
	"golang.org/x/text/unicode/norm"
)

// ClassifyTech assigns title and abstract to the first matching technology category.
func ClassifyTech(title, abstract string) string {
	text := normalizeText(title + " " + abstract)
	for _, c := range loweredCategories {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.name
			}
		}
	}
	return schema.OtherLabel
}

// normalizeText composes Hangul jamo sequences and lower-cases the result.
func normalizeText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
