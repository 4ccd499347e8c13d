// Package tags parses line-tagged Markdown notes into sections.
//
// A note is plain text in which a line consisting only of a tag (for
// example "#work") opens a section, a line of three or more dashes closes
// it, and every line in between belongs to that tag:
//
//	#work
//	finish report
//	---
//	#home
//	buy milk
package tags

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/tagvault/internal/apperr"
)

var (
	tagRe       = regexp.MustCompile(`^#[a-zA-Z0-9-]+$`)
	separatorRe = regexp.MustCompile(`^-{3,}$`)
	dailyNoteRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\.md$`)
)

// Tag is a validated tag such as "#project-a". The zero value is not a
// valid tag; obtain one through ParseTag.
type Tag struct {
	name string
}

// ParseTag validates s and returns it as a Tag. Surrounding whitespace is
// not trimmed.
func ParseTag(s string) (Tag, error) {
	if !IsValidTag(s) {
		return Tag{}, fmt.Errorf("%w: %q", apperr.ErrInvalidTag, s)
	}
	return Tag{name: s}, nil
}

// MustParseTag is ParseTag for literals. It panics on invalid input.
func MustParseTag(s string) Tag {
	t, err := ParseTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the tag including its leading '#'.
func (t Tag) String() string { return t.name }

// Name returns the tag without its leading '#'.
func (t Tag) Name() string { return strings.TrimPrefix(t.name, "#") }

// Equal reports whether t and o are the same tag.
func (t Tag) Equal(o Tag) bool { return t.name == o.name }

// IsZero reports whether t is the zero Tag.
func (t Tag) IsZero() bool { return t.name == "" }

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects invalid tags.
func (t *Tag) UnmarshalText(b []byte) error {
	parsed, err := ParseTag(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsTag reports whether line, trimmed, is a tag line.
func IsTag(line string) bool {
	return tagRe.MatchString(strings.TrimSpace(line))
}

// IsSeparator reports whether line, trimmed, is a section separator.
func IsSeparator(line string) bool {
	return separatorRe.MatchString(strings.TrimSpace(line))
}

// IsValidTag reports whether s is exactly a tag, without trimming.
func IsValidTag(s string) bool {
	return tagRe.MatchString(s)
}

// DateFromPath returns the YYYY-MM-DD date of a daily note path, or "" if
// the path is not a daily note. The digits are not checked against the
// calendar.
func DateFromPath(path string) string {
	m := dailyNoteRe.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}
