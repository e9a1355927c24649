package contentgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

// ContentOutline is the structured outline produced for a content project.
type ContentOutline struct {
	Title             string           `json:"title"`
	Sections          []OutlineSection `json:"sections"`
	EstimatedDuration int              `json:"estimated_duration,omitempty"`
	TargetAudience    string           `json:"target_audience"`
	KeyTakeaways      []string         `json:"key_takeaways"`
}

// OutlineSection is one outline entry. Duration is only filled for podcasts.
type OutlineSection struct {
	Title     string   `json:"title"`
	Duration  int      `json:"duration,omitempty"`
	KeyPoints []string `json:"key_points"`
}

// BlogDraft is a full blog post generated from an outline.
type BlogDraft struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	ReadingTime     int      `json:"reading_time"`
	SEOScore        int      `json:"seo_score"`
}

// PodcastScript is a speaker-tagged script generated from an outline.
type PodcastScript struct {
	Title         string          `json:"title"`
	Sections      []ScriptSection `json:"sections"`
	TotalDuration int             `json:"total_duration"`
	ShowNotes     string          `json:"show_notes"`
}

type ScriptSection struct {
	Title       string `json:"title"`
	SpeakerTag  string `json:"speaker_tag"`
	Content     string `json:"content"`
	SSMLContent string `json:"ssml_content"`
	Duration    int    `json:"duration"`
}

// EnhancedContent is the result of an improvement pass over existing content.
type EnhancedContent struct {
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// OutlineSettings tunes outline generation per project.
type OutlineSettings struct {
	HostType     types.HostType
	TargetLength int
	Audience     string
	Tone         string
}

// Service generates content through an LLM with JSON-schema constrained
// sessions, so every result parses into a typed struct.
type Service struct {
	llmClient gollem.LLMClient
}

func New(llmClient gollem.LLMClient) *Service {
	return &Service{llmClient: llmClient}
}

// generate opens a JSON session with the given schema, sends the prompt and
// decodes the first text of the response into out.
func (s *Service) generate(ctx context.Context, schema *gollem.Parameter, prompt string, out any) error {
	session, err := s.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(schema),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return goerr.Wrap(err, "failed to generate content")
	}
	if len(resp.Texts) == 0 {
		return goerr.New("LLM returned empty response")
	}

	if err := json.Unmarshal([]byte(resp.Texts[0]), out); err != nil {
		return goerr.Wrap(err, "failed to parse LLM response JSON",
			goerr.V("response", resp.Texts[0]),
		)
	}

	return nil
}

// GenerateOutline produces a structured outline for the given content type.
func (s *Service) GenerateOutline(ctx context.Context, contentType types.ContentType, prompt string, settings OutlineSettings) (*ContentOutline, error) {
	if !contentType.IsValid() {
		return nil, goerr.New("invalid content type", goerr.V("contentType", contentType))
	}

	fullPrompt := outlineInstruction(contentType, settings) + "\n\n" + prompt

	var outline ContentOutline
	if err := s.generate(ctx, outlineSchema, fullPrompt, &outline); err != nil {
		return nil, goerr.Wrap(err, "failed to generate outline",
			goerr.V("contentType", contentType),
		)
	}

	if outline.Title == "" {
		outline.Title = "Untitled Content"
	}
	if outline.TargetAudience == "" {
		outline.TargetAudience = settings.Audience
	}
	if outline.TargetAudience == "" {
		outline.TargetAudience = "General audience"
	}

	logging.From(ctx).Debug("generated content outline",
		"contentType", contentType,
		"sections", len(outline.Sections),
	)

	return &outline, nil
}

// GenerateBlogDraft expands an outline into a full blog post.
func (s *Service) GenerateBlogDraft(ctx context.Context, outline *ContentOutline) (*BlogDraft, error) {
	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal outline")
	}

	prompt := blogDraftInstruction + "\n\nOutline:\n" + string(outlineJSON)

	var draft BlogDraft
	if err := s.generate(ctx, blogDraftSchema, prompt, &draft); err != nil {
		return nil, goerr.Wrap(err, "failed to generate blog draft")
	}

	return &draft, nil
}

// GeneratePodcastScript expands an outline into a speaker-tagged script with
// SSML markup for TTS.
func (s *Service) GeneratePodcastScript(ctx context.Context, outline *ContentOutline, hostType types.HostType) (*PodcastScript, error) {
	if hostType == "" {
		hostType = types.HostTypeSingle
	}
	if !hostType.IsValid() {
		return nil, goerr.New("invalid host type", goerr.V("hostType", hostType))
	}

	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal outline")
	}

	prompt := fmt.Sprintf("%s\nHost type: %s.\n\nOutline:\n%s",
		podcastScriptInstruction, hostType, string(outlineJSON))

	var script PodcastScript
	if err := s.generate(ctx, podcastScriptSchema, prompt, &script); err != nil {
		return nil, goerr.Wrap(err, "failed to generate podcast script",
			goerr.V("hostType", hostType),
		)
	}

	return &script, nil
}

// EnhanceContent runs an improvement pass over existing content following the
// given instruction (e.g. "tighten the intro", "make it more conversational").
func (s *Service) EnhanceContent(ctx context.Context, content, instruction string) (*EnhancedContent, error) {
	if content == "" {
		return nil, goerr.New("content to enhance is empty")
	}
	if instruction == "" {
		instruction = "Improve clarity, flow and engagement while preserving meaning."
	}

	prompt := fmt.Sprintf("%s\nInstruction: %s\n\nContent:\n%s",
		enhanceInstruction, instruction, content)

	var enhanced EnhancedContent
	if err := s.generate(ctx, enhanceSchema, prompt, &enhanced); err != nil {
		return nil, goerr.Wrap(err, "failed to enhance content")
	}

	return &enhanced, nil
}
