// File: internal/services/speech/errors.go
package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrSynthesis means the provider could not produce audio.
	ErrSynthesis = errors.New("speech synthesis failed")
	// ErrNoMatch means the audio contained no recognizable speech.
	ErrNoMatch = errors.New("no speech could be recognized")
	// ErrCanceled means recognition was canceled by the provider, usually a
	// configuration or service problem.
	ErrCanceled = errors.New("speech recognition canceled")
)

// ProviderError wraps one of the sentinels above with provider detail.
type ProviderError struct {
	Kind       error
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: status %d: %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}
