package silver

import "strings"

var columnNameReplacer = strings.NewReplacer(" ", "_", ".", "_", "-", "_")

// NormalizeColumnName trims, lowercases and replaces spaces, periods and
// hyphens with underscores. It is idempotent.
func NormalizeColumnName(name string) string {
	return columnNameReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}
