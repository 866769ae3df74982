package directive

import "fmt"

// IssueKind classifies a malformed directive.
type IssueKind string

const (
	IssueMissingCloseParen  IssueKind = "MISSING_CLOSE_PAREN"
	IssueInvalidDayNumber   IssueKind = "INVALID_DAY_NUMBER"
	IssueMissingTagBoundary IssueKind = "MISSING_TAG_BOUNDARY"
)

// Issue describes a directive occurrence that was skipped. Issues are
// warnings: the rest of the buffer is still processed.
type Issue struct {
	Kind    IssueKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Offset  int       `json:"offset" yaml:"offset"`
	Line    int       `json:"line" yaml:"line"`
	Excerpt string    `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}
