package api

import (
	"github.com/starford/tagvault/internal/models"
	"github.com/starford/tagvault/internal/search"
	"github.com/starford/tagvault/internal/tagservice"
)

// TagSummary is one tag with its section and file counts (aliased from the domain layer).
type TagSummary = models.TagSummary

// TagContent is one section of a tag (aliased from the domain layer).
type TagContent = models.TagContent

// DeleteReport is the result of a tag deletion (aliased from the domain layer).
type DeleteReport = models.DeleteReport

// NoteDetail is the parsed note response type (aliased from the domain layer).
type NoteDetail = tagservice.NoteDetail

// SearchResult is a single search hit (aliased from the search layer).
type SearchResult = search.Result

// TagListResponse wraps the tag listing.
type TagListResponse struct {
	Tags []TagSummary `json:"tags" validate:"required"`
}

// TagContentResponse wraps every section of one tag.
type TagContentResponse struct {
	Tag     string       `json:"tag" example:"#work" validate:"required"`
	Entries []TagContent `json:"entries" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
