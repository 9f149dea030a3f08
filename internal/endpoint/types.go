// Package endpoint defines the canonical endpoint record and the pipeline
// that turns raw recognizer captures into validated records.
package endpoint

// Record is one documented route. After construction it is only mutated by
// the live inspector, which appends data shapes; identity fields never change.
type Record struct {
	Path        string      `json:"path" yaml:"path"`
	Method      string      `json:"method" yaml:"method"`
	Handler     string      `json:"handler,omitempty" yaml:"handler,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	DataShapes  []DataShape `json:"data_shapes,omitempty" yaml:"data_shapes,omitempty"`
	SourceFile  string      `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	CurlExample string      `json:"curl_example,omitempty" yaml:"curl_example,omitempty"`
}

// Key returns the (method, path) dedup key.
func (r *Record) Key() string {
	return r.Method + " " + r.Path
}

// Parameter is one path parameter derived from the route pattern.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Example  string `json:"example" yaml:"example"`
	Location string `json:"location" yaml:"location"`
	Required bool   `json:"required" yaml:"required"`
}

// DataShape is a request or response body sampled from a running server.
// Populated only by the live inspector, never during static extraction.
type DataShape struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ExampleBody string `json:"example_body" yaml:"example_body"`
}

// DescriptionPlaceholder is rendered in reports when a record carries no
// recovered description. Records themselves keep an empty description so the
// conflict resolver can distinguish documented from undocumented routes.
const DescriptionPlaceholder = "Handler function"
