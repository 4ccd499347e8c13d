package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/tagvault/internal/tags"
)

func tagStrings(ts []tags.Tag) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func TestBuild_OrdersTagsAndHits(t *testing.T) {
	docs := []Document{
		{Path: "2024-01-15.md", Content: "#work\nfinish report\n---\n#home\nbuy milk\n"},
		{Path: "2024-01-16.md", Content: "#home\nwater plants\n#errands\npost office\n#home\ncall mum\n"},
		{Path: "ideas.md", Content: "#work\nrefactor billing\n"},
	}
	ix := Build(docs)

	if diff := cmp.Diff([]string{"#work", "#home", "#errands"}, tagStrings(ix.Tags())); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}

	type row struct{ Path, Date, Content string }
	var got []row
	for _, h := range ix.Hits(tags.MustParseTag("#home")) {
		got = append(got, row{h.FilePath, h.Date, h.Section.Content})
	}
	want := []row{
		{"2024-01-15.md", "2024-01-15", "buy milk"},
		{"2024-01-16.md", "2024-01-16", "water plants"},
		{"2024-01-16.md", "2024-01-16", "call mum"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Hits(#home) mismatch (-want +got):\n%s", diff)
	}

	work := ix.Hits(tags.MustParseTag("#work"))
	if len(work) != 2 || work[1].FilePath != "ideas.md" || work[1].Date != "" {
		t.Errorf("Hits(#work) = %+v", work)
	}
}

func TestBuild_EmptySectionsDoNotCreateTags(t *testing.T) {
	ix := Build([]Document{
		{Path: "a.md", Content: "#todo\n\n---\n#idle\n#real\ncontent\n"},
	})
	if diff := cmp.Diff([]string{"#real"}, tagStrings(ix.Tags())); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	if hits := ix.Hits(tags.MustParseTag("#todo")); hits != nil {
		t.Errorf("Hits(#todo) = %+v, want nil", hits)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	docs := []Document{
		{Path: "x.md", Content: "#a\n1\n#b\n2\n"},
		{Path: "y.md", Content: "#b\n3\n---\n#a\n4\n"},
	}
	first, second := Build(docs), Build(docs)
	if diff := cmp.Diff(tagStrings(first.Tags()), tagStrings(second.Tags())); diff != "" {
		t.Errorf("tags differ:\n%s", diff)
	}
	for _, tag := range first.Tags() {
		if diff := cmp.Diff(first.Hits(tag), second.Hits(tag)); diff != "" {
			t.Errorf("hits for %s differ:\n%s", tag, diff)
		}
	}
}

func TestHits_ReturnsCopy(t *testing.T) {
	ix := Build([]Document{{Path: "a.md", Content: "#a\nx\n"}})
	tag := tags.MustParseTag("#a")
	hits := ix.Hits(tag)
	hits[0].FilePath = "mutated"
	if ix.Hits(tag)[0].FilePath != "a.md" {
		t.Error("caller mutation leaked into the index")
	}
}

func TestNote(t *testing.T) {
	ix := Build([]Document{{Path: "2024-02-29.md", Content: "#a\nx\n"}})
	n, ok := ix.Note("2024-02-29.md")
	if !ok || n.Date != "2024-02-29" || len(n.Sections) != 1 {
		t.Errorf("Note = %+v, %v", n, ok)
	}
	if _, ok := ix.Note("missing.md"); ok {
		t.Error("expected missing note")
	}
}

func TestEmpty(t *testing.T) {
	ix := Empty()
	if ix.Len() != 0 || len(ix.Tags()) != 0 || len(ix.Documents()) != 0 {
		t.Errorf("Empty index is not empty: %d tags", ix.Len())
	}
}
