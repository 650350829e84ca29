package catalog

import "strings"

// Filter returns the entries whose title or description contains the search term,
// case-insensitively, preserving the original relative order. A blank or
// whitespace-only term returns the input unchanged. Pure function, safe to call
// on every keystroke.
func Filter(entries []DashboardConfig, searchTerm string) []DashboardConfig {
	normalizedTerm := strings.ToLower(strings.TrimSpace(searchTerm))
	if normalizedTerm == "" {
		return entries
	}

	matchingEntries := make([]DashboardConfig, 0, len(entries))
	for _, entry := range entries {
		lowercaseTitle := strings.ToLower(entry.Title)
		lowercaseDescription := strings.ToLower(entry.Description)
		if strings.Contains(lowercaseTitle, normalizedTerm) || strings.Contains(lowercaseDescription, normalizedTerm) {
			matchingEntries = append(matchingEntries, entry)
		}
	}
	return matchingEntries
}
