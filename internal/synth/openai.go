package synth

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"noteapi/internal/config"
	"noteapi/internal/model"
	"noteapi/internal/store"
)

// Synthesizer turns a job's resolved inputs into a Markdown note.
//
// Error policy: provider-side failures (model call errors, missing
// credential) are returned as literal error text with a nil error so a job
// still reaches a terminal state with visible content. A non-nil error is
// reserved for transfer failures (an input that could not be read or
// uploaded), which fail the whole job.
type Synthesizer interface {
	GenerateNotes(ctx context.Context, audio *model.Artifact, images []model.Artifact, userText string) (string, error)
}

// NoAPIKeyText is the literal result published when no provider credential
// is configured.
const NoAPIKeyText = "Error: OpenAI API key not configured."

const (
	systemInstruction  = "You are an expert academic assistant. Generate clear, structured, and comprehensive notes from the provided material. Output format: Markdown."
	closingInstruction = "Please synthesize the above inputs into a single cohesive set of notes."
)

// providerClient is the slice of the OpenAI SDK the adapter uses; tests
// substitute a fake.
type providerClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAI is a constructed, dependency-injected synthesis adapter wrapping
// the OpenAI API. Audio is transferred through the transcription endpoint
// and joins the prompt as a transcript part; images join as inline
// base64 parts.
type OpenAI struct {
	cfg    config.OpenAIConfig
	store  store.JobStore
	client providerClient
	log    *slog.Logger
}

func NewOpenAI(cfg config.OpenAIConfig, st store.JobStore, log *slog.Logger) *OpenAI {
	s := &OpenAI{cfg: cfg, store: st, log: log}
	if cfg.APIKey != "" {
		s.client = openai.NewClient(cfg.APIKey)
	}
	return s
}

// GenerateNotes builds the ordered multimodal prompt and invokes the model.
// Prompt order: system instruction, audio transcript, images in bundle
// order, user text labeled as supplementary, closing instruction.
func (s *OpenAI) GenerateNotes(ctx context.Context, audio *model.Artifact, images []model.Artifact, userText string) (string, error) {
	if s.cfg.APIKey == "" || s.client == nil {
		return NoAPIKeyText, nil
	}

	var parts []openai.ChatMessagePart

	if audio != nil {
		transcript, err := s.transcribe(ctx, *audio)
		if err != nil {
			return "", fmt.Errorf("transfer audio %s: %w", audio.Name, err)
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: "Lecture audio transcript:\n" + transcript,
		})
	}

	for _, img := range images {
		part, err := s.imagePart(ctx, img)
		if err != nil {
			return "", fmt.Errorf("transfer image %s: %w", img.Name, err)
		}
		parts = append(parts, part)
	}

	if userText != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: "Additional student notes (supplementary): " + userText,
		})
	}

	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: closingInstruction,
	})

	req := openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		Temperature: 0.3, // low temperature for factual output
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.log.Error("provider call failed", "error", err)
		return fmt.Sprintf("Error generating notes: %v", err), nil
	}
	if len(resp.Choices) == 0 {
		s.log.Error("provider returned no choices")
		return "Error generating notes: provider returned no choices", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// transcribe streams the audio artifact to the transcription endpoint.
func (s *OpenAI) transcribe(ctx context.Context, audio model.Artifact) (string, error) {
	rc, err := s.store.OpenArtifact(ctx, audio)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.TranscriptionModel,
		Reader:   rc,
		FilePath: audio.Name, // filename hint: the SDK derives the format from it
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// imagePart reads an image artifact fully and wraps it as an inline
// base64 data-URL content part.
func (s *OpenAI) imagePart(ctx context.Context, img model.Artifact) (openai.ChatMessagePart, error) {
	rc, err := s.store.OpenArtifact(ctx, img)
	if err != nil {
		return openai.ChatMessagePart{}, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return openai.ChatMessagePart{}, err
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", imageMIME(img.Name), base64.StdEncoding.EncodeToString(b))
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    dataURL,
			Detail: openai.ImageURLDetailAuto,
		},
	}, nil
}

func imageMIME(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
