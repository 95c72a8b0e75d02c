package menu

import (
	"strings"

	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

// Filter keeps items whose name contains query, case-insensitively. Categories
// left without items are dropped. A blank query returns the input unchanged.
func Filter(categories []orderapi.Category, query string) []orderapi.Category {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return categories
	}

	out := make([]orderapi.Category, 0, len(categories))
	for _, category := range categories {
		var matched []orderapi.MenuItem
		for _, item := range category.Menus {
			if strings.Contains(strings.ToLower(item.Name), needle) {
				matched = append(matched, item)
			}
		}
		if len(matched) == 0 {
			continue
		}
		category.Menus = matched
		out = append(out, category)
	}
	return out
}
