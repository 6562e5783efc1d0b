package tablebuilder

import (
	"strings"
	"unicode"
)

// ApplyConvention transforms a column name into the given naming convention.
// Names are tokenized on whitespace, underscores, hyphens, and lower-to-upper
// case boundaries, then rejoined per the target convention. The transform is
// idempotent: applying the same convention twice yields the same result.
func ApplyConvention(name string, convention NamingConvention) string {
	if convention == ConventionUnchanged {
		return name
	}

	tokens := tokenizeName(name)
	if len(tokens) == 0 {
		return name
	}

	switch convention {
	case ConventionSnakeCase:
		for i, tok := range tokens {
			tokens[i] = strings.ToLower(tok)
		}
		return strings.Join(tokens, "_")
	case ConventionCamelCase:
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(capitalize(tok))
		}
		return b.String()
	case ConventionLowercase:
		return strings.ToLower(strings.Join(tokens, ""))
	case ConventionUppercase:
		return strings.ToUpper(strings.Join(tokens, ""))
	default:
		return name
	}
}

// tokenizeName splits a name into word tokens. Separators are whitespace,
// underscores, and hyphens; within a run, a lower-to-upper transition starts
// a new token, and an upper run followed by a lower letter keeps its last
// upper with the lower token ("JSONData" -> "JSON", "Data").
func tokenizeName(name string) []string {
	var tokens []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				// Last upper of an acronym run belongs to the next token
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	out = append(out, unicode.ToUpper(runes[0]))
	for _, r := range runes[1:] {
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
