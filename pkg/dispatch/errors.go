package dispatch

const (
	// MissingFieldsMessage is returned to callers whenever a required field is absent.
	MissingFieldsMessage = "Missing required fields: FCM_Token, title, body"

	// UnknownProviderErrorMessage stands in for provider errors that carry no text.
	UnknownProviderErrorMessage = "unknown provider error"
)

// ValidationError reports a request that was rejected before reaching the provider.
type ValidationError struct {
	Message string
	// Fields lists the wire names of the missing fields.
	Fields []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderError reports a send the push provider rejected or could not complete.
type ProviderError struct {
	Message string
	// Code is a short classification of the provider failure, e.g. "invalid-argument".
	Code string
	Err  error
}

// NewProviderError wraps err, keeping its text as-is. It falls back to
// UnknownProviderErrorMessage only when err is nil or its text is empty.
func NewProviderError(code string, err error) *ProviderError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = UnknownProviderErrorMessage
	}
	return &ProviderError{
		Message: msg,
		Code:    code,
		Err:     err,
	}
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
