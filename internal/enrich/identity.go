package enrich

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SplitEmail splits email at its last "@". The domain is lower-cased.
// An address without "@" is treated as a bare local part.
func SplitEmail(email string) (local, domain string) {
	email = strings.TrimSpace(email)
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return email, ""
	}
	return email[:i], strings.ToLower(email[i+1:])
}

// ValidateEmail reports whether email has exactly one "@" and a non-empty
// domain.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if strings.Count(email, "@") != 1 {
		return false
	}
	_, domain := SplitEmail(email)
	return domain != "" && !strings.ContainsAny(domain, " /")
}

// GuessName derives a display name from the local part of email: the first
// two tokens split on ".", "_" and "-", each with its first letter upper-cased.
// It returns "" when the local part has no tokens.
func GuessName(email string) string {
	local, _ := SplitEmail(email)
	tokens := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	for i, tok := range tokens {
		tokens[i] = upperFirst(tok)
	}
	return strings.Join(tokens, " ")
}

// upperFirst upper-cases the first character of s and leaves the rest as is.
func upperFirst(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}
