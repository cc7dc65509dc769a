// File: internal/services/speech/azure_provider.go
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Recognition statuses returned by the short-audio REST API.
const (
	statusSuccess               = "Success"
	statusNoMatch               = "NoMatch"
	statusInitialSilenceTimeout = "InitialSilenceTimeout"
	statusBabbleTimeout         = "BabbleTimeout"
)

type recognitionResult struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"`
}

// AzureProvider talks to the Azure Speech REST endpoints.
type AzureProvider struct {
	config *Config
	client *resty.Client
	logger Logger
}

func NewAzureProvider(config *Config, logger Logger) (*AzureProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader(subscriptionKeyHeader, config.Key).
		SetHeader("User-Agent", "kairos")

	return &AzureProvider{config: config, client: client, logger: logger}, nil
}

// Synthesize renders text with the voice mapped from language.
func (p *AzureProvider) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	voice := VoiceFor(language)
	spoken := PlainText(text)
	if spoken == "" {
		return nil, &ProviderError{Kind: ErrSynthesis, Detail: "nothing to synthesize"}
	}

	format := p.config.OutputFormat
	if format == "" {
		format = DefaultOutputFormat
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/ssml+xml").
		SetHeader("X-Microsoft-OutputFormat", format).
		SetBody(buildSSML(voice, spoken)).
		Post(p.config.ttsURL())
	if err != nil {
		p.logger.Error("speech synthesis request failed", "voice", voice, "error", err)
		return nil, &ProviderError{Kind: ErrSynthesis, Detail: err.Error()}
	}
	if resp.IsError() {
		p.logger.Error("speech synthesis rejected", "voice", voice, "status", resp.StatusCode())
		return nil, &ProviderError{Kind: ErrSynthesis, StatusCode: resp.StatusCode(), Detail: strings.TrimSpace(resp.String())}
	}
	if len(resp.Body()) == 0 {
		return nil, &ProviderError{Kind: ErrSynthesis, StatusCode: resp.StatusCode(), Detail: "empty audio"}
	}

	p.logger.Info("speech synthesized", "voice", voice, "bytes", len(resp.Body()))
	return resp.Body(), nil
}

// Transcribe stages the upload in a temp file for the duration of the call.
func (p *AzureProvider) Transcribe(ctx context.Context, audio io.Reader, contentType, language string) (string, error) {
	locale := LocaleFor(language)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = DefaultAudioType
	}

	var result recognitionResult
	err := withTempAudio(p.config.TempDir, audio, func(f *os.File) error {
		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParam("language", locale).
			SetQueryParam("format", "simple").
			SetHeader("Content-Type", contentType).
			SetHeader("Accept", "application/json").
			SetBody(f).
			Post(p.config.sttURL())
		if err != nil {
			return &ProviderError{Kind: ErrCanceled, Detail: err.Error()}
		}
		if resp.IsError() {
			return &ProviderError{Kind: ErrCanceled, StatusCode: resp.StatusCode(), Detail: strings.TrimSpace(resp.String())}
		}
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return &ProviderError{Kind: ErrCanceled, StatusCode: resp.StatusCode(), Detail: "malformed recognition result"}
		}
		return nil
	})
	if err != nil {
		p.logger.Error("speech recognition failed", "locale", locale, "error", err)
		var perr *ProviderError
		if errors.As(err, &perr) {
			return "", perr
		}
		return "", &ProviderError{Kind: ErrCanceled, Detail: err.Error()}
	}

	switch result.RecognitionStatus {
	case statusSuccess:
		text := strings.TrimSpace(result.DisplayText)
		if text == "" {
			return "", &ProviderError{Kind: ErrNoMatch, Detail: "empty transcription"}
		}
		p.logger.Info("speech recognized", "locale", locale, "chars", len(text))
		return text, nil
	case statusNoMatch, statusInitialSilenceTimeout, statusBabbleTimeout:
		p.logger.Warn("no speech recognized", "locale", locale, "status", result.RecognitionStatus)
		return "", &ProviderError{Kind: ErrNoMatch, Detail: result.RecognitionStatus}
	default:
		p.logger.Error("speech recognition canceled", "locale", locale, "status", result.RecognitionStatus)
		return "", &ProviderError{Kind: ErrCanceled, Detail: fmt.Sprintf("recognition status %q", result.RecognitionStatus)}
	}
}

func buildSSML(voice, text string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	lang := voiceLocale(voice)
	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice xml:lang="%s" name="%s">%s</voice></speak>`,
		lang, lang, voice, escaped.String())
}
