package moderation

type violationError struct {
	message string
	result  *Result
}

func (e *violationError) Error() string {
	return e.message
}

func (e *violationError) Result() *Result {
	return e.result
}

func NewViolation(message string, result *Result) error {
	return &violationError{message: message, result: result}
}
