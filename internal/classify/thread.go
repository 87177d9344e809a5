package classify

import "context"

const (
	// Replies inherit the parent classification outright when the parent was
	// classified at or above this confidence.
	threadInheritanceThreshold = 0.90

	// Inherited confidence decays by one step per hop so a long reply chain
	// eventually falls back to real classification.
	threadInheritanceDecay = 0.9

	ThreadInheritancePattern = "thread_context_inheritance"
)

type threadPolicy struct {
	next Classifier
}

// WithThreadInheritance wraps a classifier with the reply shortcut: a
// high-confidence parent classification is inherited without consulting the
// underlying classifier at all.
func WithThreadInheritance(next Classifier) Classifier {
	return &threadPolicy{next: next}
}

func (p *threadPolicy) Classify(ctx context.Context, text string, threadCtx *ThreadContext) (*Classification, error) {
	if threadCtx != nil && threadCtx.ParentConfidence >= threadInheritanceThreshold {
		return &Classification{
			Category:     threadCtx.ParentCategory,
			Confidence:   threadCtx.ParentConfidence * threadInheritanceDecay,
			Reasoning:    "inherited from thread parent: " + threadCtx.ParentSnippet,
			Method:       MethodRegex,
			RegexPattern: ThreadInheritancePattern,
		}, nil
	}
	return p.next.Classify(ctx, text, threadCtx)
}
