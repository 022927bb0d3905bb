package pagination

import (
	"fmt"
	"math"

	"github.com/connectfood/core/internal/domain"
)

const (
	DefaultPage = 0
	DefaultSize = 20
	MaxSize     = 100
)

// Params is a zero-based page request.
type Params struct {
	Page int
	Size int
}

// NewParams validates a page request. Page is zero-based and must not be
// negative; size must be between 1 and MaxSize. Page*Size must fit in an int.
func NewParams(page, size int) (Params, error) {
	var fields []domain.FieldError
	sizeOK := size >= 1 && size <= MaxSize
	switch {
	case page < 0:
		fields = append(fields, domain.FieldError{Field: "page", Message: "must be zero or greater"})
	case sizeOK && page > math.MaxInt/size:
		fields = append(fields, domain.FieldError{Field: "page", Message: "is out of range"})
	}
	if !sizeOK {
		fields = append(fields, domain.FieldError{Field: "size", Message: fmt.Sprintf("must be between 1 and %d", MaxSize)})
	}
	if len(fields) > 0 {
		return Params{}, domain.NewValidationError(fields...)
	}
	return Params{Page: page, Size: size}, nil
}

func (p Params) Offset() int {
	return p.Page * p.Size
}

func (p Params) Limit() int {
	return p.Size
}

type Info struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func NewInfo(p Params, totalItems int) *Info {
	totalPages := 0
	if p.Size > 0 {
		totalPages = totalItems / p.Size
		if totalItems%p.Size > 0 {
			totalPages++
		}
	}

	return &Info{
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    p.Page+1 < totalPages,
		HasPrev:    p.Page > 0,
	}
}
