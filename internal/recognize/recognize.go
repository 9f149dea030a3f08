// Package recognize finds HTTP route declarations in source text. Each
// recognizer covers one routing idiom and scans independently; the same call
// site may satisfy more than one recognizer, and downstream deduplication is
// responsible for collapsing the overlap.
package recognize

import (
	"regexp"
	"strings"
)

// RawMatch is one route declaration reported by a recognizer, before literal
// cleaning and validation.
type RawMatch struct {
	Method       string
	PathToken    string
	HandlerToken string
	Offset       int // byte offset of the match in the scanned text
}

// Recognizer scans working text for one routing idiom.
type Recognizer func(text string) []RawMatch

// All returns the full recognizer family in scan order.
func All() []Recognizer {
	return []Recognizer{
		DirectRegistration,
		VerbRouter,
		DispatchTable,
		ChainedMethods,
		PathChain,
		BareChained,
		GenericVerb,
	}
}

// bareLookahead is how far past a HandleFunc call the bare recognizer looks
// for a .Methods( qualifier before claiming the call as method-less.
const bareLookahead = 50

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "OPTIONS": true, "HEAD": true,
}

// IsMethod reports whether s is one of the seven supported HTTP methods.
func IsMethod(s string) bool {
	return httpMethods[s]
}

var (
	reDirectRegistration = regexp.MustCompile(`http\.HandleFunc\s*\(\s*([^,]+)\s*,\s*([^)]+)\)`)
	reVerbRouter         = regexp.MustCompile(`\w+\.(GET|POST|PUT|DELETE|PATCH|OPTIONS|HEAD)\s*\(\s*([^,]+)\s*,\s*([^)]+)\)`)
	reDispatchTable      = regexp.MustCompile(`\w+\.Handle\s*\(\s*["']([A-Z]+)["']\s*,\s*([^,]+)\s*,\s*([^)]+)\)`)
	reChainedMethods     = regexp.MustCompile(`\w+\.HandleFunc\s*\(\s*([^,]+)\s*,\s*([^)]+)\)\s*\.Methods\s*\(\s*([^)]+)\s*\)`)
	rePathChain          = regexp.MustCompile(`\w+\.Path\s*\(\s*([^)]+)\)\s*\.HandlerFunc\s*\(\s*([^)]+)\)\s*\.Methods\s*\(\s*([^)]+)\s*\)`)
	reBareChained        = regexp.MustCompile(`\w+\.HandleFunc\s*\(\s*([^,]+)\s*,\s*([^)]+)\)`)
	reGenericVerb        = regexp.MustCompile(`(?i)\w+\.(GET|POST|PUT|DELETE|PATCH)\s*\(\s*([^,]+)\s*,\s*([^)]+)\)`)
	reMethodToken        = regexp.MustCompile(`\b[A-Z]+\b`)
)

// DirectRegistration matches registration on the default mux, which has no
// method concept; matches are reported as GET.
func DirectRegistration(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range reDirectRegistration.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, RawMatch{
			Method:       "GET",
			PathToken:    text[m[2]:m[3]],
			HandlerToken: text[m[4]:m[5]],
			Offset:       m[0],
		})
	}
	return matches
}

// VerbRouter matches direct verb calls like router.GET(path, handler).
func VerbRouter(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range reVerbRouter.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, RawMatch{
			Method:       text[m[2]:m[3]],
			PathToken:    text[m[4]:m[5]],
			HandlerToken: text[m[6]:m[7]],
			Offset:       m[0],
		})
	}
	return matches
}

// DispatchTable matches router.Handle("VERB", path, handler).
func DispatchTable(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range reDispatchTable.FindAllStringSubmatchIndex(text, -1) {
		verb := text[m[2]:m[3]]
		if !IsMethod(verb) {
			continue
		}
		matches = append(matches, RawMatch{
			Method:       verb,
			PathToken:    text[m[4]:m[5]],
			HandlerToken: text[m[6]:m[7]],
			Offset:       m[0],
		})
	}
	return matches
}

// ChainedMethods matches registrar.HandleFunc(path, handler).Methods(...),
// emitting one RawMatch per method token in the .Methods argument list.
func ChainedMethods(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range reChainedMethods.FindAllStringSubmatchIndex(text, -1) {
		path := text[m[2]:m[3]]
		handler := text[m[4]:m[5]]
		for _, verb := range methodTokens(text[m[6]:m[7]]) {
			matches = append(matches, RawMatch{
				Method:       verb,
				PathToken:    path,
				HandlerToken: handler,
				Offset:       m[0],
			})
		}
	}
	return matches
}

// PathChain matches registrar.Path(path).HandlerFunc(handler).Methods(...)
// with the same per-token expansion as ChainedMethods.
func PathChain(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range rePathChain.FindAllStringSubmatchIndex(text, -1) {
		path := text[m[2]:m[3]]
		handler := text[m[4]:m[5]]
		for _, verb := range methodTokens(text[m[6]:m[7]]) {
			matches = append(matches, RawMatch{
				Method:       verb,
				PathToken:    path,
				HandlerToken: handler,
				Offset:       m[0],
			})
		}
	}
	return matches
}

// BareChained matches registrar.HandleFunc(path, handler) with no .Methods
// qualifier in the text window that immediately follows. The lookahead keeps
// it from double-reporting calls already claimed by ChainedMethods.
func BareChained(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range reBareChained.FindAllStringSubmatchIndex(text, -1) {
		end := m[1]
		window := text[end:min(end+bareLookahead, len(text))]
		if strings.Contains(window, ".Methods(") {
			continue
		}
		matches = append(matches, RawMatch{
			Method:       "GET",
			PathToken:    text[m[2]:m[3]],
			HandlerToken: text[m[4]:m[5]],
			Offset:       m[0],
		})
	}
	return matches
}

// GenericVerb is the case-insensitive fallback for verb calls on any
// receiver; the verb is uppercased.
func GenericVerb(text string) []RawMatch {
	var matches []RawMatch
	for _, m := range reGenericVerb.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, RawMatch{
			Method:       strings.ToUpper(text[m[2]:m[3]]),
			PathToken:    text[m[4]:m[5]],
			HandlerToken: text[m[6]:m[7]],
			Offset:       m[0],
		})
	}
	return matches
}

// methodTokens extracts known HTTP verbs from a .Methods(...) argument list.
// Tokens may be quoted strings or bare uppercase identifiers. When nothing
// parses to a known verb, GET is assumed.
func methodTokens(args string) []string {
	var verbs []string
	for _, tok := range reMethodToken.FindAllString(args, -1) {
		if IsMethod(tok) {
			verbs = append(verbs, tok)
		}
	}
	if len(verbs) == 0 {
		return []string{"GET"}
	}
	return verbs
}
