package utils

// Truncate shortens a string for log output, appending "..." when it
// was cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
