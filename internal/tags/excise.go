package tags

import "strings"

// Excise removes every section of tag from content, tag line included, and
// returns the rewritten text with the number of sections removed. When
// nothing is removed content is returned unchanged.
//
// All other lines are kept byte for byte, in order. A separator that ends
// up directly after an excised block with nothing above it except the start
// of the document or another separator no longer terminates anything and is
// dropped as well; every other separator stays so the retained sections
// keep their boundaries.
func Excise(content string, tag Tag) (string, int) {
	note := ParseTaggedSections(content, "")
	lines := strings.Split(content, "\n")

	// The empty element after a trailing newline belongs to the file, not
	// to the last section.
	last := len(lines) - 1
	if strings.HasSuffix(content, "\n") {
		last--
	}

	drop := make([]bool, len(lines))
	removed := 0
	for _, s := range note.Sections {
		if s.Tag != tag {
			continue
		}
		end := min(s.EndLine, last)
		for i := s.StartLine - 1; i <= end; i++ {
			drop[i] = true
		}
		removed++
	}
	if removed == 0 {
		return content, 0
	}

	prevKept := -1
	for i, line := range lines {
		if drop[i] {
			continue
		}
		if i > 0 && drop[i-1] && IsSeparator(line) && (prevKept < 0 || IsSeparator(lines[prevKept])) {
			drop[i] = true
			continue
		}
		prevKept = i
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !drop[i] {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), removed
}
