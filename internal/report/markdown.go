package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/routelens/routelens/internal/endpoint"
)

// tocGroupLimit caps how many endpoints each table-of-contents group shows.
const tocGroupLimit = 10

var methodBadges = map[string]string{
	"GET":     "🟢 GET",
	"POST":    "🔵 POST",
	"PUT":     "🟡 PUT",
	"DELETE":  "🔴 DELETE",
	"PATCH":   "🟠 PATCH",
	"OPTIONS": "⚪ OPTIONS",
	"HEAD":    "⚫ HEAD",
}

// MarkdownWriter renders a report as human-readable API documentation.
type MarkdownWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewMarkdownWriter creates a markdown report writer.
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{writer: w}
}

// WriteReport renders the complete report.
func (m *MarkdownWriter) WriteReport(r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	endpoints := make([]*endpoint.Record, len(r.Endpoints))
	copy(endpoints, r.Endpoints)
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].Path < endpoints[j].Path })

	groups, groupNames := groupByBasePath(endpoints)
	methodCounts := countMethods(endpoints)

	writeHeader(&b, r, len(endpoints), len(groups), len(methodCounts))
	writeMethodDistribution(&b, methodCounts)
	writeTableOfContents(&b, groups, groupNames)
	writeQuickStart(&b, endpoints)
	writeEndpointDetails(&b, groups, groupNames)
	writeStatistics(&b, endpoints, methodCounts)
	writeConflicts(&b, r)
	writeErrors(&b, r)
	writeFooter(&b, r)

	_, err := io.WriteString(m.writer, b.String())
	return err
}

func badge(method string) string {
	if b, ok := methodBadges[method]; ok {
		return b
	}
	return "⚫ " + method
}

// groupByBasePath buckets endpoints by their first path segment and returns
// the groups plus sorted group names.
func groupByBasePath(endpoints []*endpoint.Record) (map[string][]*endpoint.Record, []string) {
	groups := make(map[string][]*endpoint.Record)
	for _, rec := range endpoints {
		base := "/"
		if rec.Path != "/" {
			parts := strings.Split(strings.Trim(rec.Path, "/"), "/")
			if len(parts) > 0 && parts[0] != "" {
				base = "/" + parts[0]
			}
		}
		groups[base] = append(groups[base], rec)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return groups, names
}

func countMethods(endpoints []*endpoint.Record) map[string]int {
	counts := make(map[string]int)
	for _, rec := range endpoints {
		counts[rec.Method]++
	}
	return counts
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeHeader(b *strings.Builder, r *Report, total, groups, methods int) {
	b.WriteString("# 🚀 API Documentation\n\n")
	b.WriteString("**Generated by routelens** • ")
	fmt.Fprintf(b, "📅 %s • ", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("⚡ Auto-generated from source code\n\n")

	if total > 0 {
		b.WriteString("🟢 **Status**: Ready\n\n")
	} else {
		b.WriteString("⚪ **Status**: No endpoints found\n\n")
	}

	b.WriteString("---\n\n## 📊 API Overview\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|-----|\n")
	fmt.Fprintf(b, "| 🔗 **Total Endpoints** | %d |\n", total)
	fmt.Fprintf(b, "| 📁 **Route Groups** | %d |\n", groups)
	fmt.Fprintf(b, "| 🔧 **HTTP Methods** | %d |\n", methods)
	fmt.Fprintf(b, "| 📂 **Files Processed** | %d |\n\n", r.Stats.FilesProcessed)
}

func writeMethodDistribution(b *strings.Builder, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	b.WriteString("### HTTP Method Distribution\n\n")
	parts := make([]string, 0, len(counts))
	for _, method := range sortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%s: %d", badge(method), counts[method]))
	}
	b.WriteString(strings.Join(parts, " | "))
	b.WriteString("\n\n")
}

func writeTableOfContents(b *strings.Builder, groups map[string][]*endpoint.Record, names []string) {
	b.WriteString("---\n\n## 📚 Table of Contents\n\n")
	for i, name := range names {
		emoji := "📁"
		if name == "/" {
			emoji = "🏠"
		}
		fmt.Fprintf(b, "### %d. %s %s\n\n", i+1, emoji, strings.ToUpper(name))

		b.WriteString("| Method | Path | Handler | Quick Test |\n")
		b.WriteString("|--------|------|---------|------------|\n")

		recs := groups[name]
		shown := recs
		if len(shown) > tocGroupLimit {
			shown = shown[:tocGroupLimit]
		}
		for _, rec := range shown {
			fmt.Fprintf(b, "| %s | `%s` | `%s` | `%s` |\n", badge(rec.Method), rec.Path, rec.Handler, rec.CurlExample)
		}
		if len(recs) > tocGroupLimit {
			fmt.Fprintf(b, "\n**%d more endpoints** in the detailed section below\n", len(recs)-tocGroupLimit)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
}

func writeQuickStart(b *strings.Builder, endpoints []*endpoint.Record) {
	b.WriteString("## 🚀 Quick Start\n\n")
	b.WriteString("### Testing Endpoints\n")
	limit := 5
	if len(endpoints) < limit {
		limit = len(endpoints)
	}
	for _, rec := range endpoints[:limit] {
		fmt.Fprintf(b, "```bash\n%s\n```\n", rec.CurlExample)
	}
	b.WriteString("\n---\n\n")
}

func writeEndpointDetails(b *strings.Builder, groups map[string][]*endpoint.Record, names []string) {
	b.WriteString("## 🔧 Detailed Endpoint Documentation\n\n")

	for _, name := range names {
		emoji := "📁"
		if name == "/" {
			emoji = "🏠"
		}
		fmt.Fprintf(b, "### %s %s Endpoints\n\n", emoji, strings.ToUpper(name))

		for _, rec := range groups[name] {
			fmt.Fprintf(b, "<details>\n<summary>%s `%s`</summary>\n\n", badge(rec.Method), rec.Path)

			b.WriteString("**📝 Overview**\n")
			b.WriteString("| Property | Value |\n")
			b.WriteString("|---|-----|\n")
			fmt.Fprintf(b, "| 🔧 Handler | `%s` |\n", rec.Handler)
			fmt.Fprintf(b, "| 📖 Description | %s |\n", description(rec))
			fmt.Fprintf(b, "| 📂 Source | `%s` |\n", rec.SourceFile)

			if len(rec.Parameters) > 0 {
				b.WriteString("\n**🔑 Path Parameters**\n")
				b.WriteString("| Name | Example | Required |\n")
				b.WriteString("|------|---------|----------|\n")
				for _, p := range rec.Parameters {
					fmt.Fprintf(b, "| `%s` | `%s` | %v |\n", p.Name, p.Example, p.Required)
				}
			}

			b.WriteString("\n**🧪 Testing**\n")
			fmt.Fprintf(b, "```bash\n%s\n```\n", rec.CurlExample)

			b.WriteString("\n**💡 Expected Response**\n")
			b.WriteString("```json\n" + expectedResponse(rec) + "\n```\n")

			if len(rec.DataShapes) > 0 {
				b.WriteString("\n**📊 Data Shapes**\n")
				for _, shape := range rec.DataShapes {
					fmt.Fprintf(b, "#### %s\n", shape.Name)
					fmt.Fprintf(b, "**Description**: %s\n\n", shape.Description)
					b.WriteString("```json\n" + shape.ExampleBody + "\n```\n")
				}
			}

			b.WriteString("</details>\n\n")
		}
		b.WriteString("\n---\n\n")
	}
}

// description renders the record's description, falling back to the
// placeholder for endpoints without comments.
func description(rec *endpoint.Record) string {
	if rec.Description == "" {
		return endpoint.DescriptionPlaceholder
	}
	return rec.Description
}

// expectedResponse guesses a representative response body from the path, used
// when no live inspection data is available.
func expectedResponse(rec *endpoint.Record) string {
	lower := strings.ToLower(rec.Path)
	switch {
	case strings.Contains(lower, "health"):
		return `{"status": "ok"}`
	case strings.Contains(lower, "users") && rec.Method == "GET":
		return "[\n  {\n    \"id\": 1,\n    \"name\": \"John Doe\",\n    \"email\": \"john@example.com\"\n  }\n]"
	case strings.Contains(lower, "users") && rec.Method == "POST":
		return "{\n  \"id\": 3,\n  \"name\": \"New User\",\n  \"email\": \"new@example.com\"\n}"
	default:
		return "{\n  \"message\": \"Success response\"\n}"
	}
}

func writeStatistics(b *strings.Builder, endpoints []*endpoint.Record, counts map[string]int) {
	b.WriteString("## 📈 Statistics\n\n")

	if len(counts) > 0 {
		b.WriteString("### HTTP Method Distribution\n\n")
		maxCount := 0
		for _, c := range counts {
			if c > maxCount {
				maxCount = c
			}
		}
		for _, method := range sortedKeys(counts) {
			count := counts[method]
			percentage := float64(count) / float64(len(endpoints)) * 100
			barLength := count * 30 / maxCount
			plural := "s"
			if count == 1 {
				plural = ""
			}
			fmt.Fprintf(b, "**%s**: %d endpoint%s %s%s %.1f%%\n",
				badge(method), count, plural,
				strings.Repeat("█", barLength),
				strings.Repeat("░", 30-barLength),
				percentage)
		}
		b.WriteString("\n")
	}

	documented := 0
	for _, rec := range endpoints {
		if rec.Description != "" {
			documented++
		}
	}
	coverage := 0.0
	if len(endpoints) > 0 {
		coverage = float64(documented) / float64(len(endpoints)) * 100
	}

	b.WriteString("### 📊 API Quality Metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|-----|\n")
	fmt.Fprintf(b, "| 📊 **Documentation Coverage** | %.1f%% |\n", coverage)
	fmt.Fprintf(b, "| 📖 **Documented Endpoints** | %d/%d |\n\n", documented, len(endpoints))
}

func writeConflicts(b *strings.Builder, r *Report) {
	if len(r.Conflicts) == 0 {
		return
	}
	b.WriteString("## ⚔️ Duplicate Route Resolutions\n\n")
	b.WriteString("| Method | Path | Kept Handler | New Handler | Resolution |\n")
	b.WriteString("|--------|------|--------------|-------------|------------|\n")
	for _, c := range r.Conflicts {
		fmt.Fprintf(b, "| %s | `%s` | `%s` | `%s` | %s |\n",
			c.Method, c.Path, c.KeptHandler, c.NewHandler, c.Resolution)
	}
	b.WriteString("\n")
}

func writeErrors(b *strings.Builder, r *Report) {
	if len(r.Errors) == 0 {
		return
	}
	b.WriteString("## ⚠️ File Errors\n\n")
	for _, e := range r.Errors {
		fmt.Fprintf(b, "- `%s`: %s\n", e.File, e.Message)
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, r *Report) {
	b.WriteString("---\n\n")
	fmt.Fprintf(b, "*📄 Auto-generated by routelens (run `%s`).*\n", r.RunID)
	fmt.Fprintf(b, "*🤖 Last updated: %s*\n", r.GeneratedAt.Format("Monday, January 2, 2006 at 3:04 PM"))
}
