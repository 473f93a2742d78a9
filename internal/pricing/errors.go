package pricing

import "errors"

var (
	ErrAmbiguousLineReference = errors.New("invalid_line_reference_ambiguous")
	ErrMissingLineReference   = errors.New("invalid_line_reference_missing")
	ErrLineIndexOutOfRange    = errors.New("invalid_line_index")
)
