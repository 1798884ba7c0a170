package types

// UsageError reports bad command line input, including an inverted date
// range. Programs print usage and exit non-zero on it.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
