package gnews

import (
	"net/url"
	"strconv"
)

// Article is the canonical article shape returned to tool callers.
// Field names are part of the output contract and must not change.
type Article struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt string  `json:"published_at"`
	Image       *string `json:"image"`
}

// Envelope is the canonical tool output: a total count plus articles in
// upstream order.
type Envelope struct {
	Total    int       `json:"total"`
	Articles []Article `json:"articles"`
}

// SearchParams holds the validated parameters for the search endpoint.
// Zero-valued optional fields are omitted from the upstream request.
type SearchParams struct {
	Query   string
	Lang    string
	Country string
	Max     int
	InTitle bool
}

// Values encodes the parameter set as upstream query parameters. Absent
// optional parameters are omitted entirely rather than sent empty.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("q", p.Query)
	if p.Lang != "" {
		v.Set("lang", p.Lang)
	}
	if p.Country != "" {
		v.Set("country", p.Country)
	}
	if p.Max > 0 {
		v.Set("max", strconv.Itoa(p.Max))
	}
	if p.InTitle {
		v.Set("in", "title")
	}
	return v
}

// HeadlinesParams holds the validated parameters for the top-headlines
// endpoint.
type HeadlinesParams struct {
	Lang     string
	Country  string
	Category string
	Max      int
}

// Values encodes the parameter set as upstream query parameters.
func (p HeadlinesParams) Values() url.Values {
	v := url.Values{}
	if p.Lang != "" {
		v.Set("lang", p.Lang)
	}
	if p.Country != "" {
		v.Set("country", p.Country)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Max > 0 {
		v.Set("max", strconv.Itoa(p.Max))
	}
	return v
}
