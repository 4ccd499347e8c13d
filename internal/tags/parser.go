package tags

import "strings"

// TaggedSection is one contiguous run of lines owned by a tag. StartLine
// and EndLine are 0-based, inclusive, and cover the body only; the tag
// line itself sits at StartLine-1.
type TaggedSection struct {
	Tag       Tag    `json:"tag"`
	Content   string `json:"content"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// ParsedNote is the parse result for one document.
type ParsedNote struct {
	FilePath string          `json:"filePath"`
	Date     string          `json:"date,omitempty"`
	Sections []TaggedSection `json:"sections"`
}

// SectionsFor returns the sections of n owned by tag, in file order.
func (n ParsedNote) SectionsFor(tag Tag) []TaggedSection {
	var out []TaggedSection
	for _, s := range n.Sections {
		if s.Tag == tag {
			out = append(out, s)
		}
	}
	return out
}

// ParseTaggedSections splits content into tagged sections in a single
// forward pass. Lines are trimmed for classification only; section bodies
// keep their raw lines and are trimmed as a whole block. A section whose
// body is empty or whitespace-only is dropped.
func ParseTaggedSections(content, filePath string) ParsedNote {
	lines := strings.Split(content, "\n")

	var (
		sections []TaggedSection
		current  Tag
		open     bool
		body     []string
		start    int
	)

	emit := func(end int) {
		if !open || len(body) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text == "" {
			return
		}
		sections = append(sections, TaggedSection{
			Tag:       current,
			Content:   text,
			StartLine: start,
			EndLine:   end,
		})
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case tagRe.MatchString(trimmed):
			emit(i - 1)
			current, open, body, start = Tag{name: trimmed}, true, nil, i+1
		case separatorRe.MatchString(trimmed):
			emit(i - 1)
			current, open, body = Tag{}, false, nil
		case open:
			body = append(body, line)
		}
	}
	emit(len(lines) - 1)

	return ParsedNote{
		FilePath: filePath,
		Date:     DateFromPath(filePath),
		Sections: sections,
	}
}

// ExtractTags returns the distinct tag lines of content in first-seen
// order. Unlike ParseTaggedSections it also reports tags whose sections
// are empty.
func ExtractTags(content string) []Tag {
	seen := make(map[string]struct{})
	var out []Tag
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !tagRe.MatchString(trimmed) {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, Tag{name: trimmed})
	}
	return out
}
