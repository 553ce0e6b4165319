package sync

import (
	"strings"
)

// IgnoreList decides whether a root-relative path is excluded from scanning.
//
// Patterns come in two flavors. A pattern containing "/" is a path pattern:
// it matches the full normalized relative path, or any path below it, pruning
// the whole subtree. A pattern without "/" is a name pattern: it matches if
// any single path component equals it. Both flavors support the glob
// wildcards "*" (any run of characters) and "?" (exactly one character).
type IgnoreList struct {
	patterns []string
}

func NewIgnoreList(patterns []string) *IgnoreList {
	return &IgnoreList{patterns: append([]string(nil), patterns...)}
}

// ShouldIgnore reports whether relPath matches any configured pattern.
// Separators are normalized to "/" first; matching is case-sensitive.
func (il *IgnoreList) ShouldIgnore(relPath string) bool {
	normalized := strings.ReplaceAll(relPath, "\\", "/")

	for _, pattern := range il.patterns {
		if strings.Contains(pattern, "/") {
			if matchName(normalized, pattern) {
				return true
			}
			if strings.HasPrefix(normalized, pattern+"/") {
				return true
			}
		} else {
			for _, component := range strings.Split(normalized, "/") {
				if matchName(component, pattern) {
					return true
				}
			}
		}
	}

	return false
}

func matchName(name, pattern string) bool {
	if strings.ContainsAny(pattern, "*?") {
		return globMatch([]rune(name), []rune(pattern))
	}
	return name == pattern
}

// globMatch is a small backtracking matcher over two rune sequences. Only
// "*" and "?" are special; there are no character classes and no regex.
func globMatch(text, pattern []rune) bool {
	if len(pattern) == 0 {
		return len(text) == 0
	}
	if pattern[0] == '*' {
		for i := 0; i <= len(text); i++ {
			if globMatch(text[i:], pattern[1:]) {
				return true
			}
		}
		return false
	}
	if len(text) == 0 {
		return false
	}
	if pattern[0] == '?' || pattern[0] == text[0] {
		return globMatch(text[1:], pattern[1:])
	}
	return false
}
