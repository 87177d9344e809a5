package classify

import "context"

// Category is the closed set of message intents.
type Category string

const (
	CategorySalaryChange    Category = "salary_change"
	CategoryLeaveRequest    Category = "leave_request"
	CategoryAttendance      Category = "attendance"
	CategoryExpense         Category = "expense"
	CategoryEvaluation      Category = "evaluation"
	CategoryRecruitment     Category = "recruitment"
	CategoryGeneralQuestion Category = "general_question"
	CategoryGreeting        Category = "greeting"
	CategorySystemNotice    Category = "system_notice"
	CategoryOther           Category = "other"
)

var AllCategories = []Category{
	CategorySalaryChange,
	CategoryLeaveRequest,
	CategoryAttendance,
	CategoryExpense,
	CategoryEvaluation,
	CategoryRecruitment,
	CategoryGeneralQuestion,
	CategoryGreeting,
	CategorySystemNotice,
	CategoryOther,
}

func ValidCategory(c Category) bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MethodAI     = "ai"
	MethodRegex  = "regex"
	MethodManual = "manual"
)

type Classification struct {
	Category     Category `json:"category"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	Method       string   `json:"classificationMethod"`
	RegexPattern string   `json:"regexPattern,omitempty"`
}

// ThreadContext is derived per classification call from the stored parent
// message of a thread reply. It is never persisted.
type ThreadContext struct {
	ParentCategory   Category
	ParentConfidence float64
	ParentSnippet    string
	ReplyCount       int
}

type Classifier interface {
	Classify(ctx context.Context, text string, threadCtx *ThreadContext) (*Classification, error)
}
