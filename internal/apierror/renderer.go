// Package apierror translates arbitrary errors into HTTP error responses.
//
// Translation is a two-step pipeline: a Classifier picks exactly one Kind for
// the error using a fixed precedence order, then an Assembler builds the
// envelope for that kind and enforces the kind's status code. Both steps are
// stateless and safe for concurrent use.
package apierror

import "context"

// Renderer runs the classify → assemble pipeline.
type Renderer struct {
	classifier *Classifier
	assembler  *Assembler
}

// NewRenderer creates a Renderer. A nil classifier uses every rule.
func NewRenderer(classifier *Classifier, assembler *Assembler) *Renderer {
	if classifier == nil {
		classifier = defaultClassifier
	}

	return &Renderer{
		classifier: classifier,
		assembler:  assembler,
	}
}

// Render converts err into a response. It never fails.
func (r *Renderer) Render(ctx context.Context, err error) Response {
	return r.assembler.Assemble(ctx, r.classifier.Classify(err), err)
}
