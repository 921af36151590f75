package pdftext

const (
	ReasonUnreadable = "unreadable PDF"
	ReasonEmpty      = "empty or unreadable PDF"
)

// ExtractionError is returned when no text can be obtained from a PDF.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }
