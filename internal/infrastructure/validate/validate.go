package validate

import "strings"

// FieldError field error to be nested by other errors
type FieldError struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// NewFieldError create new field error
func NewFieldError(domain string, reason string) *FieldError {
	return &FieldError{domain, reason}
}

// Join concatenates reasons into a single human readable line
func Join(errs []*FieldError) string {
	reasons := make([]string, 0, len(errs))
	for _, e := range errs {
		reasons = append(reasons, e.Reason)
	}
	return strings.Join(reasons, "; ")
}

// Validator validates request payloads, returning nil when
// the value is valid
type Validator interface {
	// Struct validates struct fields by their `validate` tags
	Struct(s interface{}) []*FieldError
	// AllEmpty reports an error if none of fields holds a value
	AllEmpty(names []string, fields ...interface{}) *FieldError
}
