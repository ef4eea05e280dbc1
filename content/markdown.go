package content

import "strings"

// TrimBoilerplate drops every line before the first top-level heading
// ("# "). Text without such a heading is returned unmodified.
func TrimBoilerplate(markdown string) string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			return strings.Join(lines[i:], "\n")
		}
	}
	return markdown
}
