// Package extract finds dependency identifiers in scripts and component references in markup.
//
// Script extraction is a pattern scan over the declaration calls of the framework. It is brittle
// against formatting variance, so it is hidden behind DependencyExtractor and can be replaced by
// a real parser without touching the library builder.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hightail/wilson-sub000/internal/errors"
)

// Mode selects which declaration calls are read.
type Mode string

const (
	ModeService   Mode = "service"
	ModeBehavior  Mode = "behavior"
	ModeComponent Mode = "component"
	ModeApp       Mode = "app"
)

var modeMethods = map[Mode][]string{
	ModeService:   {"service", "utility", "parser", "factory"},
	ModeBehavior:  {"behavior"},
	ModeComponent: {"component"},
	ModeApp:       {"config", "run"},
}

var (
	functionParamsPattern = regexp.MustCompile(`function\s*[A-Za-z0-9_$]*\s*\(([^)]*)\)`)
	blockCommentPattern   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	identifierPattern     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// DependencyExtractor returns the direct dependency ids declared in a script.
type DependencyExtractor interface {
	Extract(source string, mode Mode) ([]string, error)
}

// PatternExtractor finds `<object>.<method>(` calls for the mode and reads the parameter names of
// the first `function (...)` among the arguments of each call.
type PatternExtractor struct {
	sigil    string
	ignore   map[string]struct{}
	patterns map[Mode]*regexp.Regexp
}

// NewPatternExtractor drops names starting with sigil and names in ignore.
func NewPatternExtractor(object, sigil string, ignore []string) *PatternExtractor {
	extractor := &PatternExtractor{
		sigil:    sigil,
		ignore:   make(map[string]struct{}, len(ignore)),
		patterns: make(map[Mode]*regexp.Regexp, len(modeMethods)),
	}

	for _, name := range ignore {
		extractor.ignore[name] = struct{}{}
	}

	for mode, methods := range modeMethods {
		extractor.patterns[mode] = regexp.MustCompile(
			`(?:^|[^A-Za-z0-9_$.])` + regexp.QuoteMeta(object) + `\s*\.\s*(?:` + strings.Join(methods, "|") + `)\s*\(`,
		)
	}

	return extractor
}

// Extract implements DependencyExtractor. Names keep first-occurrence order.
func (extractor *PatternExtractor) Extract(source string, mode Mode) ([]string, error) {
	pattern, ok := extractor.patterns[mode]
	if !ok {
		return nil, errors.New(UnknownModeError{Mode: mode})
	}

	var (
		names []string
		seen  = make(map[string]struct{})
	)

	for _, loc := range pattern.FindAllStringIndex(source, -1) {
		match := functionParamsPattern.FindStringSubmatch(callArguments(source, loc[1]))
		if match == nil {
			continue
		}

		for _, name := range extractor.params(match[1]) {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names, nil
}

func (extractor *PatternExtractor) params(list string) []string {
	var names []string

	list = blockCommentPattern.ReplaceAllString(list, "")

	for _, param := range strings.Split(list, ",") {
		name := strings.TrimSpace(param)
		if i := strings.IndexAny(name, " \t\n="); i >= 0 {
			name = name[:i]
		}

		if !identifierPattern.MatchString(name) {
			continue
		}

		if extractor.sigil != "" && strings.HasPrefix(name, extractor.sigil) {
			continue
		}

		if _, ok := extractor.ignore[name]; ok {
			continue
		}

		names = append(names, name)
	}

	return names
}

// callArguments returns the arguments of the call whose opening parenthesis ends right before
// start, up to the matching closing parenthesis. Brackets inside strings and comments are not
// counted. An unterminated call runs to the end of source.
func callArguments(source string, start int) string {
	depth := 1

	for i := start; i < len(source); i++ {
		switch c := source[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth--; depth == 0 {
				return source[start:i]
			}
		case '\'', '"', '`':
			i = skipString(source, i)
		case '/':
			if i+1 >= len(source) {
				continue
			}

			switch source[i+1] {
			case '/':
				if end := strings.IndexByte(source[i:], '\n'); end >= 0 {
					i += end
				} else {
					i = len(source)
				}
			case '*':
				if end := strings.Index(source[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					i = len(source)
				}
			}
		}
	}

	return source[start:]
}

// skipString returns the index of the quote closing the string literal opened at start.
func skipString(source string, start int) int {
	quote := source[start]

	for i := start + 1; i < len(source); i++ {
		switch source[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}

	return len(source)
}

// UnknownModeError is returned for a mode without declaration methods.
type UnknownModeError struct {
	Mode Mode
}

func (err UnknownModeError) Error() string {
	return fmt.Sprintf("unknown extraction mode %q", err.Mode)
}
