// Package source provides text-level preprocessing for route extraction:
// comment blanking, string literal cleaning, and handler comment resolution.
package source

// BlankComments returns a copy of src with line (//) and block (/* */)
// comments overwritten by spaces. Newlines inside block comments are kept, so
// every byte offset and line number in the result maps 1:1 to the original
// text. Comment markers inside string and rune literals are left alone.
func BlankComments(src string) string {
	out := []byte(src)

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateDoubleQuote
		stateSingleQuote
		stateBacktick
	)

	state := stateCode
	for i := 0; i < len(out); i++ {
		c := out[i]

		switch state {
		case stateCode:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = stateBlockComment
				out[i] = ' '
			case c == '"':
				state = stateDoubleQuote
			case c == '\'':
				state = stateSingleQuote
			case c == '`':
				state = stateBacktick
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		case stateDoubleQuote:
			if c == '\\' && i+1 < len(out) {
				i++
			} else if c == '"' || c == '\n' {
				state = stateCode
			}
		case stateSingleQuote:
			if c == '\\' && i+1 < len(out) {
				i++
			} else if c == '\'' || c == '\n' {
				state = stateCode
			}
		case stateBacktick:
			if c == '`' {
				state = stateCode
			}
		}
	}

	return string(out)
}
