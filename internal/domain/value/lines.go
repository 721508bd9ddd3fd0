package value

import "strings"

// LinesToText renders a list field as one item per line.
func LinesToText(items []string) string {
	return strings.Join(items, "\n")
}

// TextToLines splits on newlines, trims every line and drops the empty ones.
// Whitespace-only lines are lost, so LinesToText(TextToLines(s)) may differ from s.
func TextToLines(text string) []string {
	parts := strings.Split(text, "\n")
	items := make([]string, 0, len(parts))

	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}

	return items
}
