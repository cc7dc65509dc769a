package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*AzureProvider, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Key = "speech-key"
	cfg.TTSEndpoint = srv.URL + "/tts"
	cfg.STTEndpoint = srv.URL + "/stt"
	cfg.TempDir = dir
	cfg.Timeout = 5 * time.Second

	p, err := NewAzureProvider(cfg, nopLogger{})
	require.NoError(t, err)
	return p, dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp audio must be removed")
}

func TestSynthesize(t *testing.T) {
	var gotBody, gotFormat, gotKey, gotType string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		gotKey = r.Header.Get(subscriptionKeyHeader)
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio"))
	})

	audio, err := p.Synthesize(context.Background(), "Oh, you *ate* pizza & pasta?", "spanish")
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3-audio"), audio)
	assert.Equal(t, DefaultOutputFormat, gotFormat)
	assert.Equal(t, "speech-key", gotKey)
	assert.Equal(t, "application/ssml+xml", gotType)
	assert.Contains(t, gotBody, `name="es-ES-ElviraNeural"`)
	assert.Contains(t, gotBody, `xml:lang="es-ES"`)
	assert.Contains(t, gotBody, "Oh, you ate pizza &amp; pasta?")
}

func TestSynthesizeUnknownLanguageUsesDefaultVoice(t *testing.T) {
	var gotBody string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte("mp3"))
	})

	_, err := p.Synthesize(context.Background(), "hello", "elvish")
	require.NoError(t, err)
	assert.Contains(t, gotBody, `name="`+DefaultVoice+`"`)
}

func TestSynthesizeFailure(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := p.Synthesize(context.Background(), "hola", "spanish")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSynthesis))

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
}

func TestTranscribe(t *testing.T) {
	var gotQuery, gotAudio, gotType string
	p, dir := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotAudio = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"RecognitionStatus":"Success","DisplayText":"Hola, ¿qué tal?","Offset":100,"Duration":2000}`))
	})

	text, err := p.Transcribe(context.Background(), strings.NewReader("RIFF-wave"), "audio/wav", "Spanish")
	require.NoError(t, err)

	assert.Equal(t, "Hola, ¿qué tal?", text)
	assert.Contains(t, gotQuery, "language=es-ES")
	assert.Contains(t, gotQuery, "format=simple")
	assert.Equal(t, "audio/wav", gotType)
	assert.Equal(t, "RIFF-wave", gotAudio)
	assertDirEmpty(t, dir)
}

func TestTranscribeOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"no match", http.StatusOK, `{"RecognitionStatus":"NoMatch"}`, ErrNoMatch},
		{"silence", http.StatusOK, `{"RecognitionStatus":"InitialSilenceTimeout"}`, ErrNoMatch},
		{"provider error", http.StatusOK, `{"RecognitionStatus":"Error"}`, ErrCanceled},
		{"unauthorized", http.StatusUnauthorized, ``, ErrCanceled},
		{"garbage", http.StatusOK, `not json`, ErrCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, dir := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Transcribe(context.Background(), strings.NewReader("audio"), "", "xx-XX")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assertDirEmpty(t, dir)
		})
	}
}

func TestTranscribeUnwritableTempDir(t *testing.T) {
	called := false
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	p.config.TempDir = "/nonexistent/kairos"

	_, err := p.Transcribe(context.Background(), strings.NewReader("audio"), "", "spanish")
	assert.ErrorIs(t, err, ErrCanceled)
	assert.False(t, called, "provider must not be called")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.Key = "k"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "https://eastus.tts.speech.microsoft.com/cognitiveservices/v1", cfg.ttsURL())
	assert.Equal(t, "https://eastus.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", cfg.sttURL())
}
