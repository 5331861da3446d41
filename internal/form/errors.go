package form

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors for the form engine
var (
	ErrUnknownField    = errors.New("unknown field")
	ErrDerivedField    = errors.New("derived field cannot be edited")
	ErrNotAList        = errors.New("field is not a list")
	ErrIndexOutOfRange = errors.New("list index out of range")
	ErrLastRow         = errors.New("cannot remove the last row")
	ErrInvalidValue    = errors.New("invalid value for field")
	ErrSubmitInFlight  = errors.New("a submission is already in progress")
	ErrLookupLoading   = errors.New("reference data is still loading")
	ErrInvalidModel    = errors.New("invalid form model")
)

// FormErrorKey is the ErrorMap key for errors that belong to the whole form
// rather than a single field.
const FormErrorKey = "_form"

// SubmissionFailedMessage is shown when the submit collaborator fails.
const SubmissionFailedMessage = "failed to save, please try again"

// ErrorMap maps a field name to a human readable message. A missing key
// means the field is valid.
type ErrorMap map[string]string

// Fields returns the names carrying an error, sorted.
func (m ErrorMap) Fields() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the map.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ValidationError is returned by Controller.Submit when the values do not
// pass validation. No submission is attempted.
type ValidationError struct {
	Errors ErrorMap
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors.Fields(), ", ")
}

// SubmissionError is returned by Controller.Submit when the submit
// collaborator fails. The message is deliberately generic; the cause is
// kept for logging and errors.Is/As.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return SubmissionFailedMessage
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
