// Package placeholder finds and fills <name> tokens in command templates.
package placeholder

import "regexp"

var paramRegex = regexp.MustCompile(`<([^>]+)>`)

// Extract returns the placeholder names in template in order of appearance.
// A name that occurs twice is reported twice.
func Extract(template string) []string {
	matches := paramRegex.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// Unique drops repeated names, keeping the first occurrence of each.
func Unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Build replaces every <name> in template with values[name]. Names missing
// from values become the empty string. Substituted values are not scanned
// again.
func Build(template string, values map[string]string) string {
	return paramRegex.ReplaceAllStringFunc(template, func(token string) string {
		return values[token[1:len(token)-1]]
	})
}

// Has reports whether template contains at least one placeholder.
func Has(template string) bool {
	return paramRegex.MatchString(template)
}
