package ai

const (
	ReasonMalformed   = "malformed AI response"
	ReasonUnavailable = "AI service unavailable"
)

// ServiceError is returned when the completion service fails or answers with
// something that cannot be used.
type ServiceError struct {
	Reason string
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

func Malformed(err error) *ServiceError   { return &ServiceError{Reason: ReasonMalformed, Err: err} }
func Unavailable(err error) *ServiceError { return &ServiceError{Reason: ReasonUnavailable, Err: err} }
