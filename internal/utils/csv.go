package utils

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparator is the field separator used when the config file doesn't
// name one. It rarely shows up in track metadata but stays easy to type.
const DefaultSeparator = '|'

const quote = '"'

// Codec splits and joins playlist lines on a single separator rune.
// Fields containing the separator or a quote are wrapped in quotes with
// internal quotes doubled, as in https://en.wikipedia.org/wiki/Comma-separated_values#Basic_rules_and_examples
type Codec struct {
	Sep rune
}

// NewCodec returns a Codec for sep, falling back to DefaultSeparator when sep
// is zero or would clash with the quote character.
func NewCodec(sep rune) Codec {
	if sep == 0 || sep == quote || sep == utf8.RuneError {
		sep = DefaultSeparator
	}
	return Codec{Sep: sep}
}

// Split breaks a line into its unquoted fields.
// A separator inside a quoted section does not end the field. Fields are
// cut out of line unchanged, so bytes that aren't valid UTF-8 survive.
func (c Codec) Split(line string) []string {
	sep := string(c.Sep)
	var fields []string
	start := 0
	insideQuotes := false

	for i := 0; i < len(line); {
		switch {
		case line[i] == quote:
			insideQuotes = !insideQuotes
			i++
		case !insideQuotes && strings.HasPrefix(line[i:], sep):
			fields = append(fields, c.Unquote(line[start:i]))
			i += len(sep)
			start = i
		default:
			i++
		}
	}
	return append(fields, c.Unquote(line[start:]))
}

// Unquote removes the quotes around a field and collapses doubled quotes.
// A field made of a single quote character is returned as is.
func (c Codec) Unquote(s string) string {
	if len(s) < 2 || s[0] != quote || s[len(s)-1] != quote {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
}

// Quote wraps s in quotes when it holds a quote or the separator.
func (c Codec) Quote(s string) string {
	if !strings.ContainsRune(s, quote) && !strings.ContainsRune(s, c.Sep) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Join quotes every field and joins them with the separator.
func (c Codec) Join(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = c.Quote(f)
	}
	return strings.Join(quoted, string(c.Sep))
}
