package apierror

import (
	"errors"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/query"
	"github.com/jsamuelsen/go-api-errors/internal/validation"
)

// ClassifierOptions selects which rules take part in classification.
type ClassifierOptions struct {
	// DisabledKinds skips the rule for each listed kind. Unclassified cannot
	// be disabled.
	DisabledKinds map[Kind]bool

	// DisabledQueryErrors removes sub-kinds from the MalformedQuery group.
	DisabledQueryErrors map[query.ErrorKind]bool
}

type rule struct {
	kind  Kind
	match func(error) bool
}

// Classifier maps errors to kinds by evaluating an ordered rule list and
// returning the first match.
type Classifier struct {
	rules []rule
}

var defaultClassifier = NewClassifier(ClassifierOptions{})

// Classify classifies err with every rule enabled.
func Classify(err error) Kind {
	return defaultClassifier.Classify(err)
}

// NewClassifier builds a classifier with the rules allowed by opts.
func NewClassifier(opts ClassifierOptions) *Classifier {
	all := []rule{
		{KindWrappedResponse, isWrappedResponse},
		{KindEntityNotFound, isEntityNotFound},
		{KindRouteNotFound, isRouteNotFound},
		{KindMethodNotAllowed, isMethodNotAllowed},
		{KindValidationFailed, isValidationFailed},
		{KindUnauthenticated, isUnauthenticated},
		{KindUnauthorized, isUnauthorized},
		{KindMalformedQuery, malformedQueryMatcher(opts.DisabledQueryErrors)},
		{KindGenericHTTP, isGenericHTTP},
	}

	rules := make([]rule, 0, len(all))

	for _, r := range all {
		if opts.DisabledKinds[r.kind] {
			continue
		}

		rules = append(rules, r)
	}

	return &Classifier{rules: rules}
}

// Classify returns the kind of the first matching rule, or KindUnclassified.
// It never panics: an error whose methods panic is unclassified.
func (c *Classifier) Classify(err error) (kind Kind) {
	if err == nil {
		return KindUnclassified
	}

	defer func() {
		if recover() != nil {
			kind = KindUnclassified
		}
	}()

	for _, r := range c.rules {
		if r.match(err) {
			return r.kind
		}
	}

	return KindUnclassified
}

func isWrappedResponse(err error) bool {
	var target *ResponseError
	return errors.As(err, &target)
}

func isEntityNotFound(err error) bool {
	var target *domain.NotFoundError
	return errors.As(err, &target) || errors.Is(err, domain.ErrNotFound)
}

func isRouteNotFound(err error) bool {
	var target *RouteNotFoundError
	return errors.As(err, &target)
}

func isMethodNotAllowed(err error) bool {
	var target *MethodNotAllowedError
	return errors.As(err, &target)
}

func isValidationFailed(err error) bool {
	_, ok := validation.Extract(err)
	return ok
}

func isUnauthenticated(err error) bool {
	var target *domain.AuthenticationError
	return errors.As(err, &target) || errors.Is(err, domain.ErrUnauthenticated)
}

func isUnauthorized(err error) bool {
	var target *domain.AuthorizationError
	return errors.As(err, &target) || errors.Is(err, domain.ErrForbidden)
}

// malformedQueryMatcher matches every enabled query sub-kind as one group.
func malformedQueryMatcher(disabled map[query.ErrorKind]bool) func(error) bool {
	return func(err error) bool {
		var target *query.Error
		if !errors.As(err, &target) {
			return false
		}

		return !disabled[target.Kind]
	}
}

func isGenericHTTP(err error) bool {
	var target StatusCoder
	return errors.As(err, &target)
}
