package generate

import (
	"errors"
	"fmt"
)

// InputError reports a request rejected before any model call.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func inputErr(field, msg string) error { return &InputError{Field: field, Message: msg} }

var (
	// ErrTemplateNotFound is returned for an unknown carousel template id.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrURLUnreadable is returned when neither the provider nor a fetcher
	// can read a URL source.
	ErrURLUnreadable = errors.New("this provider cannot read URLs; paste the article text instead")
)
