package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

// ErrTranscriptionFailed is returned when AssemblyAI reports a failed transcript
var ErrTranscriptionFailed = errors.New("recording transcription failed")

// RecordingUtterance is one speaker turn recovered from a recording
type RecordingUtterance struct {
	Speaker string
	Text    string
	StartMs int64
}

// RecordingTranscriber turns an interview recording into speaker turns
type RecordingTranscriber interface {
	TranscribeRecording(ctx context.Context, recordingURL string) ([]RecordingUtterance, error)
}

// AssemblyAIClient transcribes recordings with the AssemblyAI SDK
type AssemblyAIClient struct {
	client *aai.Client
}

// NewAssemblyAIClient creates an AssemblyAI client
func NewAssemblyAIClient(apiKey string) *AssemblyAIClient {
	return &AssemblyAIClient{client: aai.NewClient(apiKey)}
}

// TranscribeRecording submits the recording and waits for the transcript
func (c *AssemblyAIClient) TranscribeRecording(ctx context.Context, recordingURL string) ([]RecordingUtterance, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels:     aai.Bool(true),
		SpeakersExpected:  aai.Int64(2),
		LanguageDetection: aai.Bool(true),
	}

	transcript, err := c.client.Transcripts.TranscribeFromURL(ctx, recordingURL, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription: %w", err)
	}
	return utterancesFromTranscript(transcript)
}

func utterancesFromTranscript(transcript aai.Transcript) ([]RecordingUtterance, error) {
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("%w: %s", ErrTranscriptionFailed, msg)
	}

	out := make([]RecordingUtterance, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		text := strings.TrimSpace(aai.ToString(u.Text))
		if text == "" {
			continue
		}
		out = append(out, RecordingUtterance{
			Speaker: aai.ToString(u.Speaker),
			Text:    text,
			StartMs: aai.ToInt64(u.Start),
		})
	}

	if len(out) == 0 {
		if text := strings.TrimSpace(aai.ToString(transcript.Text)); text != "" {
			out = append(out, RecordingUtterance{Text: text})
		}
	}
	return out, nil
}
