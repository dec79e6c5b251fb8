package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// ErrNoCursor indicates no cursor was provided (first page request).
var ErrNoCursor = errors.New("no cursor provided")

// PageRequest holds pagination parameters from the query string.
type PageRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor" json:"cursor"`

	// Limit is the maximum number of items to return.
	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PageRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// Validate rejects cursors that cannot be decoded.
func (p *PageRequest) Validate() error {
	_, err := p.DecodeCursor()
	if err == nil || errors.Is(err, ErrNoCursor) {
		return nil
	}

	return err
}

// DecodeCursor decodes the cursor. It returns ErrNoCursor on a first page
// request and a *domain.ValidationError for an undecodable cursor.
func (p *PageRequest) DecodeCursor() (*Cursor, error) {
	return DecodeCursor(p.Cursor)
}

// Cursor marks the position after which the next page starts.
type Cursor struct {
	// After is the ID of the last item already returned.
	After string `json:"a"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// Paginate cuts one page out of items, starting after the cursor position.
// id returns the identifier used for cursor positions.
func Paginate[T any](items []T, cursor *Cursor, limit int, id func(T) string) Page[T] {
	start := 0

	if cursor != nil {
		for i, item := range items {
			if id(item) == cursor.After {
				start = i + 1
				break
			}
		}
	}

	rest := items[start:]
	hasMore := len(rest) > limit

	if hasMore {
		rest = rest[:limit]
	}

	page := Page[T]{Items: rest, HasMore: hasMore}
	if page.Items == nil {
		page.Items = []T{}
	}

	if hasMore && len(rest) > 0 {
		page.NextCursor = EncodeCursor(&Cursor{After: id(rest[len(rest)-1])})
	}

	return page
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(c *Cursor) string {
	if c == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string.
func DecodeCursor(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	jsonBytes, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, domain.NewValidationError("cursor", "is not a valid cursor")
	}

	var c Cursor

	err = json.Unmarshal(jsonBytes, &c)
	if err != nil || c.After == "" {
		return nil, domain.NewValidationError("cursor", "is not a valid cursor")
	}

	return &c, nil
}
