package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/hightail/wilson-sub000/internal/errors"
	"golang.org/x/net/html"
)

// Lookup maps an element name (without prefix) to a known component id.
type Lookup func(name string) (string, bool)

// MarkupRefs are the references declared by one template, in document order without duplicates.
type MarkupRefs struct {
	Components []string
	Behaviors  []string
	Guides     []string
}

// All returns the component references followed by the behavior and guide references.
func (refs MarkupRefs) All() []string {
	return append(append(append([]string(nil), refs.Components...), refs.Behaviors...), refs.Guides...)
}

// MarkupExtractor reads `<prefix-NAME>` elements and `prefix-behavior` / `prefix-guide`
// attributes from templates.
type MarkupExtractor struct {
	elementPrefix     string
	behaviorAttribute string
	guideAttribute    string
}

func NewMarkupExtractor(prefix string) *MarkupExtractor {
	prefix = strings.ToLower(prefix)

	return &MarkupExtractor{
		elementPrefix:     prefix + "-",
		behaviorAttribute: prefix + "-behavior",
		guideAttribute:    prefix + "-guide",
	}
}

// Extract tokenizes markup. Elements whose name does not resolve through lookup are plain
// custom elements and ignored. Tokenizer failures are returned as ParseError with no references.
func (extractor *MarkupExtractor) Extract(reader io.Reader, lookup Lookup) (MarkupRefs, error) {
	var (
		refs      MarkupRefs
		seen      = make(map[string]struct{})
		tokenizer = html.NewTokenizer(reader)
	)

	add := func(list *[]string, kind, id string) {
		if key := kind + ":" + id; id != "" {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				*list = append(*list, id)
			}
		}
	}

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return MarkupRefs{}, errors.New(ParseError{Cause: err})
			}

			return refs, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()

			if name, ok := strings.CutPrefix(token.Data, extractor.elementPrefix); ok && lookup != nil {
				if id, ok := lookup(name); ok {
					add(&refs.Components, "component", id)
				}
			}

			for _, attr := range token.Attr {
				switch attr.Key {
				case extractor.behaviorAttribute:
					for _, id := range strings.Fields(attr.Val) {
						add(&refs.Behaviors, "behavior", id)
					}
				case extractor.guideAttribute:
					for _, id := range strings.Fields(attr.Val) {
						add(&refs.Guides, "guide", id)
					}
				}
			}
		}
	}
}

// ExtractString is Extract over a string.
func (extractor *MarkupExtractor) ExtractString(markup string, lookup Lookup) (MarkupRefs, error) {
	return extractor.Extract(strings.NewReader(markup), lookup)
}

// NormalizeName folds element and component names to one key: lower case without dashes, so
// `<ht-user-card>` resolves the component `UserCard`.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "")
}

// ParseError is returned when a template cannot be tokenized.
type ParseError struct {
	Path  string
	Cause error
}

func (err ParseError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("parsing markup: %v", err.Cause)
	}

	return fmt.Sprintf("parsing markup %s: %v", err.Path, err.Cause)
}

func (err ParseError) Unwrap() error {
	return err.Cause
}
