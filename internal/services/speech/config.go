// File: internal/services/speech/config.go
package speech

import (
	"fmt"
	"os"
	"time"
)

const (
	DefaultOutputFormat = "audio-16khz-128kbitrate-mono-mp3"
	DefaultAudioType    = "audio/wav; codecs=audio/pcm; samplerate=16000"
)

type Config struct {
	Key    string
	Region string

	// Endpoint overrides. Empty means the regional Azure endpoint.
	TTSEndpoint string
	STTEndpoint string

	// TempDir holds uploaded audio for the duration of a recognition call.
	TempDir string

	Timeout      time.Duration
	OutputFormat string
}

func (c *Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("speech key is required")
	}
	if c.Region == "" && (c.TTSEndpoint == "" || c.STTEndpoint == "") {
		return fmt.Errorf("speech region is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) ttsURL() string {
	if c.TTSEndpoint != "" {
		return c.TTSEndpoint
	}
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", c.Region)
}

func (c *Config) sttURL() string {
	if c.STTEndpoint != "" {
		return c.STTEndpoint
	}
	return fmt.Sprintf("https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", c.Region)
}

func DefaultConfig() *Config {
	return &Config{
		Region:       "eastus",
		TempDir:      os.TempDir(),
		Timeout:      30 * time.Second,
		OutputFormat: DefaultOutputFormat,
	}
}
