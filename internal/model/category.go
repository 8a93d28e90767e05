package model

import "strings"

// Category is a named grouping with an icon and colour
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// DefaultCategories returns the built-in categories
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Work", Icon: "Briefcase", Color: "#6366F1"},
		{ID: "2", Name: "Personal", Icon: "User", Color: "#8B5CF6"},
		{ID: "3", Name: "Shopping", Icon: "ShoppingCart", Color: "#EC4899"},
		{ID: "4", Name: "Health", Icon: "Heart", Color: "#10B981"},
	}
}

// FindCategory looks a category up by name, ignoring case
func FindCategory(categories []Category, name string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}
