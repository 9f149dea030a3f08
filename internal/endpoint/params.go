package endpoint

import (
	"regexp"
	"strings"
)

// Both supported path-parameter syntaxes, matched in one pass so parameters
// come out in left-to-right order.
var rePathParam = regexp.MustCompile(`:(\w+)|\{(\w+)\}`)

// Synthetic example values for common id-like parameter names, keyed by
// lower-cased name.
var paramExamples = map[string]string{
	"id":         "123",
	"userid":     "456",
	"user_id":    "456",
	"postid":     "789",
	"post_id":    "789",
	"commentid":  "101",
	"comment_id": "101",
	"orderid":    "555",
	"order_id":   "555",
	"productid":  "42",
	"product_id": "42",
	"name":       "example",
	"slug":       "sample-item",
}

const defaultParamExample = "example"

// ExtractParams derives path parameters from a canonical path, recognizing
// both :name and {name} tokens.
func ExtractParams(path string) []Parameter {
	var params []Parameter
	for _, m := range rePathParam.FindAllStringSubmatch(path, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		params = append(params, Parameter{
			Name:     name,
			Example:  exampleFor(name),
			Location: "path",
			Required: true,
		})
	}
	return params
}

// FillParams substitutes the synthetic example value for every path
// parameter, producing a concrete requestable path.
func FillParams(path string) string {
	return rePathParam.ReplaceAllStringFunc(path, func(tok string) string {
		name := strings.Trim(tok, ":{}")
		return exampleFor(name)
	})
}

func exampleFor(name string) string {
	if example, ok := paramExamples[strings.ToLower(name)]; ok {
		return example
	}
	return defaultParamExample
}
