package source

import "strings"

// escapes that appear in quoted route paths and handler references.
var unescaper = strings.NewReplacer(
	`\"`, `"`,
	`\'`, `'`,
	`\n`, "\n",
	`\t`, "\t",
)

// CleanLiteral normalizes a raw captured argument token into a plain string
// value. Double-quoted, single-quoted, and backtick-delimited forms are
// unwrapped; quoted forms are additionally unescaped. Tokens that do not look
// like a string literal (variable references, expressions) are returned
// unchanged so callers can recognize and discard them.
func CleanLiteral(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return s
	}

	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		return unescaper.Replace(s[1 : len(s)-1])
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return unescaper.Replace(s[1 : len(s)-1])
	case s[0] == '`' && s[len(s)-1] == '`':
		return s[1 : len(s)-1]
	}

	return s
}
