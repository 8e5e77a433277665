// Package labels converts between the single-line label text edited by
// users and the structured label list kept on an account.
package labels

import (
	"strings"

	"github.com/atinyakov/IdentityGrid/internal/models"
)

// Separator delimits labels in their text form.
const Separator = ";"

// Parse splits text on Separator and returns the non-empty, trimmed
// segments in their original order. It never returns nil.
//
//	Parse("admin;user")        → [{admin} {user}]
//	Parse("  admin ; user  ;") → [{admin} {user}]
//	Parse("")                  → []
func Parse(text string) []models.LabelItem {
	items := make([]models.LabelItem, 0)
	if strings.TrimSpace(text) == "" {
		return items
	}
	for _, part := range strings.Split(text, Separator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, models.LabelItem{Text: part})
	}
	return items
}

// Stringify joins the trimmed texts of labels with Separator, skipping
// labels that are blank.
func Stringify(items []models.LabelItem) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if text := strings.TrimSpace(item.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, Separator)
}
