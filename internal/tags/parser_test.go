package tags

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func section(tag, content string, start, end int) TaggedSection {
	return TaggedSection{Tag: MustParseTag(tag), Content: content, StartLine: start, EndLine: end}
}

func TestParse_DailyNote(t *testing.T) {
	got := ParseTaggedSections("#work\nfinish report\n---\n#home\nbuy milk\n", "2024-01-15.md")
	want := ParsedNote{
		FilePath: "2024-01-15.md",
		Date:     "2024-01-15",
		Sections: []TaggedSection{
			section("#work", "finish report", 1, 1),
			section("#home", "buy milk", 4, 5),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTaggedSections mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_BlankBodyIsDropped(t *testing.T) {
	got := ParseTaggedSections("#todo\n\n---\n", "notes.md")
	if len(got.Sections) != 0 {
		t.Errorf("sections = %+v, want none", got.Sections)
	}
	if got.Date != "" {
		t.Errorf("date = %q, want empty", got.Date)
	}
}

func TestParse_TagFollowedByTag(t *testing.T) {
	got := ParseTaggedSections("#a\n#b\nbody", "x.md")
	want := []TaggedSection{section("#b", "body", 2, 2)}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TagClosesPreviousSection(t *testing.T) {
	got := ParseTaggedSections("#a\none\ntwo\n#b\nthree", "x.md")
	want := []TaggedSection{
		section("#a", "one\ntwo", 1, 2),
		section("#b", "three", 4, 4),
	}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ContentKeepsInnerIndentation(t *testing.T) {
	got := ParseTaggedSections("#code\n\n    indented\n  - item\n\n", "x.md")
	if len(got.Sections) != 1 {
		t.Fatalf("len = %d, want 1", len(got.Sections))
	}
	if got.Sections[0].Content != "indented\n  - item" {
		t.Errorf("content = %q", got.Sections[0].Content)
	}
}

func TestParse_LinesOutsideTagsAreIgnored(t *testing.T) {
	got := ParseTaggedSections("intro\n---\nstray\n#t\nkept\n---\nafter", "x.md")
	want := []TaggedSection{section("#t", "kept", 4, 4)}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ConsecutiveSeparators(t *testing.T) {
	got := ParseTaggedSections("#t\nx\n---\n---\n-----\n#u\ny", "x.md")
	if len(got.Sections) != 2 {
		t.Fatalf("sections = %+v", got.Sections)
	}
}

func TestParse_InlineTagIsText(t *testing.T) {
	got := ParseTaggedSections("#t\nmention #other here\n# Heading", "x.md")
	want := []TaggedSection{section("#t", "mention #other here\n# Heading", 1, 2)}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NoTags(t *testing.T) {
	got := ParseTaggedSections("just prose\n", "plain.md")
	if got.FilePath != "plain.md" || len(got.Sections) != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestParse_Idempotent(t *testing.T) {
	content := "#a\n one \n---\n#b\n\ntwo\n#a\nthree\n"
	first := ParseTaggedSections(content, "2020-02-02.md")
	second := ParseTaggedSections(content, "2020-02-02.md")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reparse differs (-first +second):\n%s", diff)
	}
}

func TestParse_EndLineNotBeforeStartLine(t *testing.T) {
	got := ParseTaggedSections("#a\nx\n#b\ny\n---\n#c\n\nz\n\n", "x.md")
	for _, s := range got.Sections {
		if s.EndLine < s.StartLine {
			t.Errorf("section %+v ends before it starts", s)
		}
	}
}

func TestSectionsFor(t *testing.T) {
	n := ParseTaggedSections("#a\n1\n#b\n2\n#a\n3", "x.md")
	got := n.SectionsFor(MustParseTag("#a"))
	if len(got) != 2 || got[0].Content != "1" || got[1].Content != "3" {
		t.Errorf("SectionsFor = %+v", got)
	}
}

func TestExtractTags(t *testing.T) {
	content := "#a\n#b\ntext #c\n  #a  \n#todo\n\n---\n#d"
	got := ExtractTags(content)
	want := []Tag{MustParseTag("#a"), MustParseTag("#b"), MustParseTag("#todo"), MustParseTag("#d")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractTags mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTags_MatchesLinePredicate(t *testing.T) {
	content := "#x\n foo\n#y \n#x\n#bad tag\n"
	seen := map[string]bool{}
	for _, tag := range ExtractTags(content) {
		if seen[tag.String()] {
			t.Errorf("duplicate %s", tag)
		}
		seen[tag.String()] = true
	}
	if len(seen) != 2 || !seen["#x"] || !seen["#y"] {
		t.Errorf("tags = %v", seen)
	}
}
