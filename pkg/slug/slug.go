package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength    int
	separator    string
	suffixLength int
}

func defaultConfig() *config {
	return &config{separator: "-"}
}

// MaxLength caps the slug at n runes, suffix included.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator replaces the default "-" separator. The lifecycle manager
// uses "_" so derived names are valid SQL identifiers.
func Separator(sep string) Option {
	return func(c *config) { c.separator = sep }
}

// WithSuffix appends a random lowercase alphanumeric suffix of the
// given length, separated by the configured separator. Used to make
// derived identifiers unique per allocation attempt.
func WithSuffix(length int) Option {
	return func(c *config) { c.suffixLength = length }
}

// Make converts s into a lowercase identifier-safe slug: ASCII letters
// and digits pass through, common Latin diacritics fold to ASCII, and
// every other run of characters collapses to a single separator.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	budget := cfg.maxLength
	if budget > 0 && cfg.suffixLength > 0 {
		budget -= cfg.suffixLength + len(cfg.separator)
		if budget < 0 {
			budget = 0
		}
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // true at start suppresses a leading separator
	count := 0

	for _, r := range s {
		if budget > 0 && count >= budget {
			break
		}

		r = unicode.ToLower(r)
		if folded, ok := diacriticMap[r]; ok {
			r = folded
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			count++
			continue
		}

		if !lastWasSep {
			if budget > 0 && count+len(cfg.separator) > budget {
				break
			}
			b.WriteString(cfg.separator)
			lastWasSep = true
			count += len(cfg.separator)
		}
	}

	result := strings.TrimSuffix(b.String(), cfg.separator)

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if result == "" {
			return suffix
		}
		result = result + cfg.separator + suffix
	}

	return result
}

// diacriticMap folds common Latin diacritics to ASCII. Input is
// lowercased before lookup, so only lowercase forms appear here.
var diacriticMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ą': 'a', 'æ': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ė': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o', 'œ': 'o',
	'ř': 'r',
	'ś': 's', 'š': 's', 'ș': 's', 'ß': 's',
	'ť': 't', 'ț': 't',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ų': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(length int) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic("slug: failed to read random bytes: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
