package source

import "strings"

// maxLookbackLines bounds how far above a call site the resolver searches for
// comments.
const maxLookbackLines = 10

// Fragments containing these substrings are commented-out code, not prose.
var routeCallMarkers = []string{
	"HandleFunc(",
	"HandlerFunc(",
	".Handle(",
	".Methods(",
	".Path(",
	".GET(",
	".POST(",
	".PUT(",
	".DELETE(",
	".PATCH(",
}

// ResolveDescription recovers a human-readable description for a handler by
// walking backward through the original (comment-preserving) text from the
// route call site. It collects consecutive // comment lines, stopping at the
// handler's own declaration line or at the first non-comment, non-blank line.
// Returns "" when nothing qualifies.
func ResolveDescription(original, handlerSymbol string, callOffset int) string {
	if callOffset < 0 {
		return ""
	}
	if callOffset > len(original) {
		callOffset = len(original)
	}

	lines := strings.Split(original[:callOffset], "\n")

	var collected []string
	seen := 0
	for i := len(lines) - 1; i >= 0 && seen < maxLookbackLines; i-- {
		line := strings.TrimSpace(lines[i])
		seen++

		switch {
		case strings.HasPrefix(line, "//"):
			fragment := strings.TrimSpace(strings.TrimPrefix(line, "//"))
			if fragment == "" || looksLikeRouteCall(fragment) {
				continue
			}
			collected = append([]string{fragment}, collected...)
		case isHandlerDecl(line, handlerSymbol):
			return strings.Join(collected, " ")
		case line != "":
			// Any other code line ends the lookback; only comments directly
			// above the call can describe it.
			return strings.Join(collected, " ")
		}
	}

	return strings.Join(collected, " ")
}

func looksLikeRouteCall(fragment string) bool {
	for _, marker := range routeCallMarkers {
		if strings.Contains(fragment, marker) {
			return true
		}
	}
	return false
}

func isHandlerDecl(line, handlerSymbol string) bool {
	return handlerSymbol != "" &&
		strings.Contains(line, "func") &&
		strings.Contains(line, handlerSymbol)
}
