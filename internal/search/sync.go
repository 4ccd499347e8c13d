package search

import (
	"github.com/starford/tagvault/internal/index"
)

// RowsFromIndex flattens a tag index into mirror rows, tag by tag in index
// order.
func RowsFromIndex(ix *index.TagIndex) []Row {
	var rows []Row
	for _, tag := range ix.Tags() {
		for _, h := range ix.Hits(tag) {
			rows = append(rows, Row{
				Path:      h.FilePath,
				Tag:       tag.String(),
				Date:      h.Date,
				StartLine: h.Section.StartLine,
				EndLine:   h.Section.EndLine,
				Content:   h.Section.Content,
			})
		}
	}
	return rows
}

// Sync replaces the mirror with the sections of ix.
func (db *DB) Sync(ix *index.TagIndex) error {
	return db.Replace(RowsFromIndex(ix))
}
