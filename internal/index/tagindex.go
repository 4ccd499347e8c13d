package index

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/tagvault/internal/tags"
)

// Hit is one section of a tag together with the document it came from.
type Hit struct {
	FilePath string
	Date     string
	Section  tags.TaggedSection
}

// TagIndex maps every tag that owns at least one non-empty section to its
// hits. Tags keep first-seen order; hits keep document order, then file
// order within a document. A TagIndex is immutable once built.
type TagIndex struct {
	hits   *orderedmap.OrderedMap[tags.Tag, []Hit]
	docs   []Document
	notes  []tags.ParsedNote
	byPath map[string]int
}

// Build parses every document and merges the sections into a new index.
// Building twice from the same documents yields identical indexes.
func Build(docs []Document) *TagIndex {
	ix := &TagIndex{
		hits:   orderedmap.New[tags.Tag, []Hit](),
		docs:   docs,
		notes:  make([]tags.ParsedNote, len(docs)),
		byPath: make(map[string]int, len(docs)),
	}
	for i, doc := range docs {
		note := tags.ParseTaggedSections(doc.Content, doc.Path)
		ix.notes[i] = note
		ix.byPath[doc.Path] = i
		for _, s := range note.Sections {
			prev, _ := ix.hits.Get(s.Tag)
			ix.hits.Set(s.Tag, append(prev, Hit{FilePath: doc.Path, Date: note.Date, Section: s}))
		}
	}
	return ix
}

// Empty returns an index with no documents.
func Empty() *TagIndex {
	return Build(nil)
}

// Tags returns the indexed tags in first-seen order.
func (ix *TagIndex) Tags() []tags.Tag {
	out := make([]tags.Tag, 0, ix.hits.Len())
	for pair := ix.hits.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Hits returns a copy of the hits for tag; nil when the tag is unknown.
func (ix *TagIndex) Hits(tag tags.Tag) []Hit {
	hits, ok := ix.hits.Get(tag)
	if !ok {
		return nil
	}
	return append([]Hit(nil), hits...)
}

// Len returns the number of distinct tags.
func (ix *TagIndex) Len() int {
	return ix.hits.Len()
}

// Documents returns the documents the index was built from.
func (ix *TagIndex) Documents() []Document {
	return ix.docs
}

// Notes returns the parse result of every document, in document order.
func (ix *TagIndex) Notes() []tags.ParsedNote {
	return ix.notes
}

// Note returns the parse result for path.
func (ix *TagIndex) Note(path string) (tags.ParsedNote, bool) {
	i, ok := ix.byPath[path]
	if !ok {
		return tags.ParsedNote{}, false
	}
	return ix.notes[i], true
}
