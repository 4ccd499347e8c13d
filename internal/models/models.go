// Package models defines the transport-neutral result types of tagvault.
package models

import "time"

// DocumentMeta is the lightweight listing entry for a vault document.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagContent is one aggregated section for a tag. Date is empty for
// documents that are not daily notes.
type TagContent struct {
	Date     string `json:"date"`
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

// TagSummary describes a tag in the vault-wide listing.
type TagSummary struct {
	Tag      string `json:"tag"`
	Sections int    `json:"sections"`
	Files    int    `json:"files"`
}

// DeleteReport is the outcome of removing a tag across the vault.
// FilesFailed lists documents whose write-back failed; they are not
// counted in FilesModified or SectionsDeleted.
type DeleteReport struct {
	FilesModified   []string `json:"filesModified"`
	SectionsDeleted int      `json:"sectionsDeleted"`
	FilesFailed     []string `json:"filesFailed,omitempty"`
}
