// Package jsonapi shapes funnel API responses as JSON:API documents.
package jsonapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// ContentType is the media type of every API response.
const ContentType = "application/vnd.api+json"

// Document is a response body. Data holds a *Resource or a []*Resource.
type Document struct {
	Data     any         `json:"data,omitempty"`
	Meta     Meta        `json:"meta,omitempty"`
	Links    *Links      `json:"links,omitempty"`
	Included []*Resource `json:"included,omitempty"`
	Errors   []Error     `json:"errors,omitempty"`
}

// Meta carries values that sit beside the data: paging counts, a checkout
// URL, a correlation id.
type Meta map[string]any

// Links are the paging links of a list document.
type Links struct {
	Self  string `json:"self,omitempty"`
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Resource is one funnel record.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
}

// Error is one failure in an error document.
type Error struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Meta   Meta   `json:"meta,omitempty"`
}

// NewResource creates a resource with the given type, id and attributes.
func NewResource(resourceType, id string, attrs any) *Resource {
	return &Resource{Type: resourceType, ID: id, Attributes: attrs}
}

// NewSingleResponse wraps one resource.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse wraps a list. A nil list is written as [].
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{Data: resources}
}

// Page locates one page of a list: its 1-based number, its size and the
// number of rows across all pages.
type Page struct {
	Number int
	Size   int
	Total  int64
}

// Pages returns the page count, 0 for an empty list.
func (p Page) Pages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// NewPageResponse wraps one page of a list with its counts and the links to
// its neighbours. link renders the URL of a page number.
func NewPageResponse(resources []*Resource, p Page, link func(page int) string) *Document {
	pages := p.Pages()

	doc := NewListResponse(resources)
	doc.Meta = Meta{
		"page":        p.Number,
		"page_size":   p.Size,
		"total_count": p.Total,
		"total_pages": pages,
	}

	links := &Links{Self: link(p.Number), First: link(1)}
	if pages > 0 {
		links.Last = link(pages)
	}
	if p.Number > 1 {
		links.Prev = link(p.Number - 1)
	}
	if p.Number < pages {
		links.Next = link(p.Number + 1)
	}
	doc.Links = links
	return doc
}

// NewErrorResponse builds the error document for an HTTP status. detail is
// what the client is shown; a non-empty correlationID is echoed in meta so
// a report can be matched to the server log.
func NewErrorResponse(status int, detail, correlationID string) *Document {
	e := Error{
		Status: strconv.Itoa(status),
		Title:  http.StatusText(status),
		Detail: detail,
	}
	if correlationID != "" {
		e.Meta = Meta{"correlation_id": correlationID}
	}
	return &Document{Errors: []Error{e}}
}

// Timestamp is written as RFC 3339 in UTC.
type Timestamp time.Time

// At returns t as a Timestamp, or nil when t is zero so the field is left
// out.
func At(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := Timestamp(t)
	return &ts
}

// MarshalJSON writes the time in UTC.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(ts).UTC().Format(time.RFC3339))
}
