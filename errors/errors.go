package errors

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	if len(e.Record) == 0 {
		return fmt.Sprintf("parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse failures.
var (
	ErrInvalidFieldCount     = fmt.Errorf("invalid field count")
	ErrInvalidTalentPartners = fmt.Errorf("invalid talent partner count")
	ErrInvalidSource         = fmt.Errorf("invalid source, want auto or manual")
	ErrInvalidDemand         = fmt.Errorf("invalid demand value")
	ErrEmptyName             = fmt.Errorf("empty pool name")
	ErrInvalidPlan           = fmt.Errorf("invalid plan file")
)

// Workspace and configuration failures.
var (
	ErrPoolNotFound      = fmt.Errorf("pool not found")
	ErrDuplicatePool     = fmt.Errorf("duplicate pool id")
	ErrNegativeHeadcount = fmt.Errorf("headcount must be non-negative")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
	ErrNoRecords         = fmt.Errorf("no demand records")
	ErrUnknownPolicy     = fmt.Errorf("unknown policy")
)
