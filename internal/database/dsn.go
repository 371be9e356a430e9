package database

import (
	"sort"
	"strings"
)

type dsnOption struct {
	Key   string
	Value string
}

// mergeOptions layers overrides on top of defaults and returns the result
// ordered by key so DSNs are stable.
func mergeOptions(defaults, overrides map[string]string) []dsnOption {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	opts := make([]dsnOption, 0, len(merged))
	for key, value := range merged {
		opts = append(opts, dsnOption{Key: key, Value: value})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}

// quoteKeywordValue quotes a libpq keyword/value parameter when it is empty or
// contains whitespace, quotes or backslashes.
func quoteKeywordValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\n'\\") {
		return value
	}
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}
