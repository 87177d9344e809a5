package classify

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubClassifier struct {
	result *Classification
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, text string, threadCtx *ThreadContext) (*Classification, error) {
	s.calls++
	return s.result, s.err
}

func TestThreadInheritanceSkipsClassifier(t *testing.T) {
	underlying := &stubClassifier{err: errors.New("should not be called")}
	classifier := WithThreadInheritance(underlying)

	cls, err := classifier.Classify(context.Background(), "got it, will do", &ThreadContext{
		ParentCategory:   CategorySalaryChange,
		ParentConfidence: 0.95,
		ParentSnippet:    "raise Sato to 300000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if underlying.calls != 0 {
		t.Fatalf("underlying classifier called %d times", underlying.calls)
	}
	if cls.Category != CategorySalaryChange {
		t.Fatalf("expected inherited category, got %s", cls.Category)
	}
	if math.Abs(cls.Confidence-0.95*0.9) > 1e-9 {
		t.Fatalf("expected decayed confidence 0.855, got %f", cls.Confidence)
	}
	if cls.Method != MethodRegex || cls.RegexPattern != ThreadInheritancePattern {
		t.Fatalf("expected inheritance marker, got method=%s pattern=%s", cls.Method, cls.RegexPattern)
	}
}

func TestThreadInheritanceAtThreshold(t *testing.T) {
	underlying := &stubClassifier{err: errors.New("should not be called")}
	classifier := WithThreadInheritance(underlying)

	cls, err := classifier.Classify(context.Background(), "ok", &ThreadContext{
		ParentCategory:   CategoryLeaveRequest,
		ParentConfidence: 0.90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Category != CategoryLeaveRequest {
		t.Fatalf("threshold is inclusive, got %s", cls.Category)
	}
}

func TestThreadInheritanceBelowThresholdDelegates(t *testing.T) {
	underlying := &stubClassifier{result: &Classification{Category: CategoryOther, Confidence: 0.5, Method: MethodAI}}
	classifier := WithThreadInheritance(underlying)

	cls, err := classifier.Classify(context.Background(), "ok", &ThreadContext{
		ParentCategory:   CategorySalaryChange,
		ParentConfidence: 0.89,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if underlying.calls != 1 {
		t.Fatalf("expected delegation, calls=%d", underlying.calls)
	}
	if cls.Category != CategoryOther {
		t.Fatalf("expected delegated result, got %s", cls.Category)
	}
}

func TestThreadInheritanceNilContextDelegates(t *testing.T) {
	underlying := &stubClassifier{result: &Classification{Category: CategoryGreeting, Confidence: 0.8, Method: MethodAI}}
	classifier := WithThreadInheritance(underlying)

	cls, err := classifier.Classify(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if underlying.calls != 1 || cls.Category != CategoryGreeting {
		t.Fatalf("expected delegation without context, calls=%d category=%s", underlying.calls, cls.Category)
	}
}
