package model

import (
	"fmt"
	"strings"
)

// Category names a bucket of command templates.
type Category string

const (
	GAM        Category = "GAM"
	AD         Category = "AD"
	PowerShell Category = "PowerShell"
)

// Categories lists the known categories in display order.
var Categories = []Category{GAM, AD, PowerShell}

// CategoryInfo holds the presentation details of a category.
type CategoryInfo struct {
	Title        string
	CommandLabel string
	LinkText     string
	LinkURL      string
}

var categoryInfo = map[Category]CategoryInfo{
	GAM: {
		Title:        "GAM Commands",
		CommandLabel: "GAM Command",
		LinkText:     "Complete List of GAM Commands",
		LinkURL:      "https://sites.google.com/view/gam--commands/home?authuser=0",
	},
	AD: {
		Title:        "AD Commands",
		CommandLabel: "AD Command",
	},
	PowerShell: {
		Title:        "PowerShell",
		CommandLabel: "PowerShell Command",
	},
}

// Info returns the presentation details for c. Unknown categories get
// their name as the title.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfo[c]; ok {
		return info
	}
	return CategoryInfo{Title: string(c), CommandLabel: string(c) + " Command"}
}

// Known reports whether c is one of the built-in categories.
func (c Category) Known() bool {
	_, ok := categoryInfo[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a user-supplied name to a known category,
// ignoring case.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(name, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (want one of %s)", name, categoryNames())
}

func categoryNames() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
