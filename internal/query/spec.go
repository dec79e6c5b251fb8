// Package query parses and validates JSON:API-style query parameters
// (filter, include, sort, fields, append) against an allow-list.
//
// A Spec declares what a resource accepts:
//
//	spec := query.NewSpec("orders").
//	    AllowedFilters("status", "customer").
//	    AllowedFilterValues("status", "pending", "paid").
//	    AllowedFields("id", "total", "items.sku").
//	    AllowedIncludes("items").
//	    AllowedSorts("created_at", "total")
//
//	q, err := spec.Parse(r.URL.Query())
//
// Every rejection is a *Error whose Kind names the offending part.
package query

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

const listSeparator = ","

// Sort is a single sort instruction.
type Sort struct {
	Field      string
	Descending bool
}

// Query is a validated query specification.
type Query struct {
	Filters  map[string][]string
	Includes []string
	Sorts    []Sort
	Fields   map[string][]string
	Appends  []string
}

// Spec is an allow-list for one resource. A Spec is built once and is safe
// for concurrent Parse calls afterwards.
type Spec struct {
	resource     string
	filters      []string
	filterValues map[string][]string
	includes     []string
	sorts        []string
	fields       map[string][]string
	appends      []string
	configErr    *Error
}

// NewSpec creates an empty spec for the named resource.
func NewSpec(resource string) *Spec {
	return &Spec{
		resource:     resource,
		filterValues: make(map[string][]string),
		fields:       make(map[string][]string),
	}
}

// AllowedFilters declares the accepted filter names.
func (s *Spec) AllowedFilters(names ...string) *Spec {
	s.filters = append(s.filters, names...)
	return s
}

// AllowedFilterValues restricts the values accepted by a filter.
func (s *Spec) AllowedFilterValues(filter string, values ...string) *Spec {
	s.filterValues[filter] = append(s.filterValues[filter], values...)
	return s
}

// AllowedIncludes declares the relations that may be included.
func (s *Spec) AllowedIncludes(names ...string) *Spec {
	s.includes = append(s.includes, names...)
	return s
}

// AllowedSorts declares the sortable fields.
func (s *Spec) AllowedSorts(names ...string) *Spec {
	s.sorts = append(s.sorts, names...)
	return s
}

// AllowedAppends declares the computed attributes that may be appended.
func (s *Spec) AllowedAppends(names ...string) *Spec {
	s.appends = append(s.appends, names...)
	return s
}

// AllowedFields declares the selectable fields. Unqualified names belong to
// the resource; "relation.field" belongs to an included relation.
//
// Fields decide which relation columns are selectable, so they must be
// declared before includes; declaring them afterwards makes every Parse fail
// with FieldsAfterIncludes.
func (s *Spec) AllowedFields(names ...string) *Spec {
	if len(s.includes) > 0 && s.configErr == nil {
		s.configErr = newError(FieldsAfterIncludes, nil, nil)
	}

	for _, name := range names {
		relation, field := s.resource, name
		if i := strings.LastIndex(name, "."); i >= 0 {
			relation, field = name[:i], name[i+1:]
		}

		s.fields[relation] = append(s.fields[relation], field)
	}

	return s
}

// Parse validates values against the spec.
func (s *Spec) Parse(values url.Values) (*Query, error) {
	if s.configErr != nil {
		return nil, s.configErr
	}

	q := &Query{
		Filters: make(map[string][]string),
		Fields:  make(map[string][]string),
	}

	if err := s.parseFilters(values, q); err != nil {
		return nil, err
	}

	if err := s.parseIncludes(values, q); err != nil {
		return nil, err
	}

	if err := s.parseSorts(values, q); err != nil {
		return nil, err
	}

	if err := s.parseFields(values, q); err != nil {
		return nil, err
	}

	appends := splitList(values.Get("append"))
	if unknown := missing(appends, s.appends); len(unknown) > 0 {
		return nil, newError(InvalidAppendQuery, unknown, s.appends)
	}

	q.Appends = appends

	return q, nil
}

func (s *Spec) parseFilters(values url.Values, q *Query) error {
	var unknown []string

	for _, key := range slices.Sorted(maps.Keys(values)) {
		name, ok := bracketed(key, "filter")
		if !ok {
			continue
		}

		if !slices.Contains(s.filters, name) {
			unknown = append(unknown, name)
			continue
		}

		q.Filters[name] = splitList(strings.Join(values[key], listSeparator))
	}

	if len(unknown) > 0 {
		return newError(InvalidFilterQuery, unknown, s.filters)
	}

	for _, name := range slices.Sorted(maps.Keys(q.Filters)) {
		allowed, restricted := s.filterValues[name]
		if !restricted {
			continue
		}

		if bad := missing(q.Filters[name], allowed); len(bad) > 0 {
			return newError(InvalidFilterValue, bad, allowed)
		}
	}

	return nil
}

func (s *Spec) parseIncludes(values url.Values, q *Query) error {
	includes := splitList(values.Get("include"))
	if unknown := missing(includes, s.includes); len(unknown) > 0 {
		return newError(InvalidIncludeQuery, unknown, s.includes)
	}

	q.Includes = includes

	return nil
}

func (s *Spec) parseSorts(values url.Values, q *Query) error {
	var unknown []string

	for _, item := range splitList(values.Get("sort")) {
		sort := Sort{Field: item}

		if field, dir, ok := strings.Cut(item, ":"); ok {
			switch strings.ToLower(dir) {
			case "asc":
			case "desc":
				sort.Descending = true
			default:
				return newError(InvalidSortDirection, []string{dir}, []string{"asc", "desc"})
			}

			sort.Field = field
		} else if rest, found := strings.CutPrefix(item, "-"); found {
			sort.Field = rest
			sort.Descending = true
		}

		if !slices.Contains(s.sorts, sort.Field) {
			unknown = append(unknown, sort.Field)
			continue
		}

		q.Sorts = append(q.Sorts, sort)
	}

	if len(unknown) > 0 {
		return newError(InvalidSortQuery, unknown, s.sorts)
	}

	return nil
}

func (s *Spec) parseFields(values url.Values, q *Query) error {
	var (
		unknownRelations []string
		unknownFields    []string
	)

	for _, key := range slices.Sorted(maps.Keys(values)) {
		relation, ok := bracketed(key, "fields")
		if !ok {
			continue
		}

		if relation != s.resource && !slices.Contains(q.Includes, relation) {
			unknownRelations = append(unknownRelations, relation)
			continue
		}

		requested := splitList(strings.Join(values[key], listSeparator))
		for _, field := range missing(requested, s.fields[relation]) {
			unknownFields = append(unknownFields, qualify(s.resource, relation, field))
		}

		q.Fields[relation] = requested
	}

	if len(unknownRelations) > 0 {
		return newError(UnknownIncludedFields, unknownRelations, q.Includes)
	}

	if len(unknownFields) > 0 {
		return newError(InvalidFieldQuery, unknownFields, s.allowedFieldNames())
	}

	return nil
}

func (s *Spec) allowedFieldNames() []string {
	var names []string

	for _, relation := range slices.Sorted(maps.Keys(s.fields)) {
		for _, field := range s.fields[relation] {
			names = append(names, qualify(s.resource, relation, field))
		}
	}

	return names
}

func qualify(resource, relation, field string) string {
	if relation == resource {
		return field
	}

	return relation + "." + field
}

// bracketed extracts name from "prefix[name]".
func bracketed(key, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix+"[")
	if !ok {
		return "", false
	}

	name, ok := strings.CutSuffix(rest, "]")
	if !ok || name == "" {
		return "", false
	}

	return name, true
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, listSeparator)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

// missing returns the entries of requested not present in allowed.
func missing(requested, allowed []string) []string {
	var out []string

	for _, r := range requested {
		if !slices.Contains(allowed, r) {
			out = append(out, r)
		}
	}

	return out
}
