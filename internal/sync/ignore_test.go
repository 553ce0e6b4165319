package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreList_NamePattern(t *testing.T) {
	il := NewIgnoreList([]string{".DS_Store"})

	assert.True(t, il.ShouldIgnore(".DS_Store"))
	assert.True(t, il.ShouldIgnore("subdir/.DS_Store"))
	assert.False(t, il.ShouldIgnore("readme.md"))
}

func TestIgnoreList_GlobPattern(t *testing.T) {
	il := NewIgnoreList([]string{"*.tmp"})

	assert.True(t, il.ShouldIgnore("file.tmp"))
	assert.True(t, il.ShouldIgnore("dir/file.tmp"))
	assert.False(t, il.ShouldIgnore("file.txt"))
	assert.False(t, il.ShouldIgnore("tmp"))
}

func TestIgnoreList_QuestionMark(t *testing.T) {
	il := NewIgnoreList([]string{"file?.log"})

	assert.True(t, il.ShouldIgnore("file1.log"))
	assert.True(t, il.ShouldIgnore("dir/fileX.log"))
	assert.False(t, il.ShouldIgnore("file.log"))
	assert.False(t, il.ShouldIgnore("file10.log"))
}

func TestIgnoreList_BookkeepingDir(t *testing.T) {
	il := NewIgnoreList([]string{".shuttle"})

	assert.True(t, il.ShouldIgnore(".shuttle/snapshots/mac/foo.json"))
	assert.False(t, il.ShouldIgnore("my-project/main.rs"))
}

func TestIgnoreList_PathPattern(t *testing.T) {
	// A path pattern only prunes the named subtree.
	il := NewIgnoreList([]string{"projects/temp"})

	assert.True(t, il.ShouldIgnore("projects/temp"))
	assert.True(t, il.ShouldIgnore("projects/temp/foo.txt"))
	assert.False(t, il.ShouldIgnore("other/temp"))
	assert.False(t, il.ShouldIgnore("temp"))
}

func TestIgnoreList_NameVersusPathPattern(t *testing.T) {
	// A bare name matches every component with that name.
	byName := NewIgnoreList([]string{"target"})
	assert.True(t, byName.ShouldIgnore("project-a/target"))
	assert.True(t, byName.ShouldIgnore("project-b/target/debug/main"))

	// A path pattern pins it to one location.
	byPath := NewIgnoreList([]string{"project-a/target"})
	assert.True(t, byPath.ShouldIgnore("project-a/target"))
	assert.True(t, byPath.ShouldIgnore("project-a/target/debug/main"))
	assert.False(t, byPath.ShouldIgnore("project-b/target"))
}

func TestIgnoreList_BackslashNormalization(t *testing.T) {
	il := NewIgnoreList([]string{"projects/temp"})

	assert.True(t, il.ShouldIgnore(`projects\temp\foo.txt`))
}

func TestIgnoreList_CaseSensitive(t *testing.T) {
	il := NewIgnoreList([]string{"Build"})

	assert.True(t, il.ShouldIgnore("Build/out.o"))
	assert.False(t, il.ShouldIgnore("build/out.o"))
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		text    string
		pattern string
		want    bool
	}{
		{"", "", true},
		{"a", "", false},
		{"", "*", true},
		{"anything", "*", true},
		{"file.txt", "*.txt", true},
		{"file.txt", "*.tx", false},
		{"abc", "a*c", true},
		{"ac", "a*c", true},
		{"abc", "a?c", true},
		{"ac", "a?c", false},
		{"aXbYc", "a*b*c", true},
		{"node_modules", "node*", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, globMatch([]rune(tt.text), []rune(tt.pattern)),
			"globMatch(%q, %q)", tt.text, tt.pattern)
	}
}
