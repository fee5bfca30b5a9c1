package stage

import (
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/webriots/csp"
)

// Grep keeps the lines matching the regular expression pattern.
func Grep(pattern string) csp.Stage[string] {
	re := regexp.MustCompile(pattern)
	return csp.Filter(re.MatchString)
}

// GrepV drops the lines matching the regular expression pattern.
func GrepV(pattern string) csp.Stage[string] {
	re := regexp.MustCompile(pattern)
	return csp.Filter(func(line string) bool { return !re.MatchString(line) })
}

// Contain keeps the lines containing substr.
func Contain(substr string) csp.Stage[string] {
	return csp.Filter(func(line string) bool { return strings.Contains(line, substr) })
}

// Sort collects its whole input and produces it in sorted order.
func Sort() csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return slices.Values(slices.Sorted(in))
	}
}

// Uniq collects its whole input and produces each distinct line once,
// in sorted order.
func Uniq() csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return slices.Values(slices.Compact(slices.Sorted(in)))
	}
}

// Trim removes leading and trailing white space.
func Trim() csp.Stage[string] {
	return csp.Map(strings.TrimSpace)
}

// LTrim removes leading white space.
func LTrim() csp.Stage[string] {
	return csp.Map(func(line string) string { return strings.TrimLeftFunc(line, unicode.IsSpace) })
}

// RTrim removes trailing white space.
func RTrim() csp.Stage[string] {
	return csp.Map(func(line string) string { return strings.TrimRightFunc(line, unicode.IsSpace) })
}

// Cut splits each line on any of the characters in delims, ignoring
// empty fields, and keeps field number field (counted from zero). Lines
// with too few fields are dropped.
func Cut(field int, delims string) csp.Stage[string] {
	return lines(func(line string, yield func(string) bool) bool {
		fields := strings.FieldsFunc(line, func(r rune) bool { return strings.ContainsRune(delims, r) })
		if field < 0 || field >= len(fields) {
			return true
		}
		return yield(fields[field])
	})
}

// Quote wraps each line in delim.
func Quote(delim string) csp.Stage[string] {
	return csp.Map(func(line string) string { return delim + line + delim })
}

// Join collects its whole input and produces a single line with the
// input lines separated by delim. It produces an empty line when the
// input is empty.
func Join(delim string) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			yield(strings.Join(slices.Collect(in), delim))
		}
	}
}

// Split breaks each line at every occurrence of any character in
// delims. Empty chunks are kept unless keepEmpty is false.
func Split(delims string, keepEmpty bool) csp.Stage[string] {
	return lines(func(line string, yield func(string) bool) bool {
		for chunk := range splitAny(line, delims) {
			if chunk == "" && !keepEmpty {
				continue
			}
			if !yield(chunk) {
				return false
			}
		}
		return true
	})
}

func splitAny(s, delims string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			i := strings.IndexAny(s, delims)
			if i < 0 {
				yield(s)
				return
			}
			if !yield(s[:i]) {
				return
			}
			_, size := utf8.DecodeRuneInString(s[i:])
			s = s[i+size:]
		}
	}
}
