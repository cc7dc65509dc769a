package speech

import (
	"context"
	"io"
)

// Provider converts between text and audio.
type Provider interface {
	// Synthesize returns MP3 audio for text spoken in language.
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	// Transcribe returns the text spoken in audio. language is a hint.
	Transcribe(ctx context.Context, audio io.Reader, contentType, language string) (string, error)
}

// Logger mirrors services.Logger.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
