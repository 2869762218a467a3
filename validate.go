package gnewsmcp

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ferro-labs/gnews-mcp/internal/gnews"
)

// SearchRequest carries the raw search_news arguments before validation.
// Max is a pointer so an omitted value (defaulted) is distinguishable from
// an explicit 0 (rejected).
type SearchRequest struct {
	Query   string `validate:"required,max=300"`
	Lang    string
	Country string
	Max     *int `validate:"gte=1,lte=100"`
	InTitle bool
}

// HeadlinesRequest carries the raw top_headlines arguments before
// validation.
type HeadlinesRequest struct {
	Lang     string
	Country  string
	Category string
	Max      *int `validate:"gte=1,lte=100"`
}

// defaultMax is applied when the caller omits max entirely.
const defaultMax = 10

// validateSearch normalizes and validates search arguments. The query is
// trimmed of surrounding whitespace; an over-long query is rejected, never
// truncated.
func (s *Service) validateSearch(req SearchRequest) (gnews.SearchParams, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Max == nil {
		d := defaultMax
		req.Max = &d
	}
	if err := s.validate.Struct(req); err != nil {
		return gnews.SearchParams{}, invalidInput(err)
	}
	return gnews.SearchParams{
		Query:   req.Query,
		Lang:    req.Lang,
		Country: req.Country,
		Max:     *req.Max,
		InTitle: req.InTitle,
	}, nil
}

// validateHeadlines normalizes and validates top-headlines arguments.
func (s *Service) validateHeadlines(req HeadlinesRequest) (gnews.HeadlinesParams, error) {
	if req.Max == nil {
		d := defaultMax
		req.Max = &d
	}
	if err := s.validate.Struct(req); err != nil {
		return gnews.HeadlinesParams{}, invalidInput(err)
	}
	return gnews.HeadlinesParams{
		Lang:     req.Lang,
		Country:  req.Country,
		Category: req.Category,
		Max:      *req.Max,
	}, nil
}

// invalidInput maps a validator failure to an InvalidInputError naming the
// parameter and the violated constraint.
func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InvalidInputError{Field: "arguments", Reason: err.Error()}
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "Query":
		if fe.Tag() == "required" {
			return &InvalidInputError{Field: "q", Reason: "must not be empty after trimming"}
		}
		return &InvalidInputError{Field: "q", Reason: "must be at most 300 characters after trimming"}
	case "Max":
		return &InvalidInputError{Field: "max", Reason: "must be between 1 and 100 inclusive"}
	}
	return &InvalidInputError{Field: fe.Field(), Reason: "failed " + fe.Tag() + " constraint"}
}
