package contentgen_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/service/contentgen"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, _ ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, _ ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"{}"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func respondWith(body string, capture *string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if capture != nil && len(input) > 0 {
						if text, ok := input[0].(gollem.Text); ok {
							*capture = string(text)
						}
					}
					return &gollem.Response{Texts: []string{body}}, nil
				},
			}, nil
		},
	}
}

func TestGenerateOutline(t *testing.T) {
	var prompt string
	client := respondWith(`{
		"title": "Scaling a Podcast Studio",
		"sections": [
			{"title": "Intro", "duration": 5, "key_points": ["hook", "agenda"]},
			{"title": "Deep Dive", "duration": 20, "key_points": ["tooling", "workflow"]}
		],
		"estimated_duration": 30,
		"target_audience": "Indie podcasters",
		"key_takeaways": ["automate early"]
	}`, &prompt)

	svc := contentgen.New(client)
	outline := gt.R1(svc.GenerateOutline(context.Background(), types.ContentTypePodcast,
		"Episode about scaling a podcast studio",
		contentgen.OutlineSettings{HostType: types.HostTypeInterview, TargetLength: 30},
	)).NoError(t)

	gt.Value(t, outline.Title).Equal("Scaling a Podcast Studio")
	gt.A(t, outline.Sections).Length(2)
	gt.Value(t, outline.Sections[1].Duration).Equal(20)
	gt.Value(t, outline.EstimatedDuration).Equal(30)
	gt.Value(t, outline.TargetAudience).Equal("Indie podcasters")

	gt.True(t, strings.Contains(prompt, "host type: interview"))
	gt.True(t, strings.Contains(prompt, "target duration: 30 minutes"))
	gt.True(t, strings.Contains(prompt, "Episode about scaling a podcast studio"))
}

func TestGenerateOutlineDefaults(t *testing.T) {
	client := respondWith(`{"sections": [], "key_takeaways": []}`, nil)

	svc := contentgen.New(client)
	outline := gt.R1(svc.GenerateOutline(context.Background(), types.ContentTypeBlog,
		"A post", contentgen.OutlineSettings{},
	)).NoError(t)

	gt.Value(t, outline.Title).Equal("Untitled Content")
	gt.Value(t, outline.TargetAudience).Equal("General audience")
}

func TestGenerateOutlineInvalidType(t *testing.T) {
	svc := contentgen.New(&mockLLMClient{})

	_, err := svc.GenerateOutline(context.Background(), types.ContentType("video"),
		"A video", contentgen.OutlineSettings{})
	gt.Error(t, err)
}

func TestGenerateBlogDraft(t *testing.T) {
	var prompt string
	client := respondWith(`{
		"title": "Why Automation Wins",
		"meta_description": "Automation pays off.",
		"content": "## Intro\nAutomation...",
		"tags": ["automation", "workflow"],
		"reading_time": 7,
		"seo_score": 86
	}`, &prompt)

	svc := contentgen.New(client)
	draft := gt.R1(svc.GenerateBlogDraft(context.Background(), &contentgen.ContentOutline{
		Title: "Why Automation Wins",
		Sections: []contentgen.OutlineSection{
			{Title: "Intro", KeyPoints: []string{"hook"}},
		},
	})).NoError(t)

	gt.Value(t, draft.Title).Equal("Why Automation Wins")
	gt.Value(t, draft.ReadingTime).Equal(7)
	gt.Value(t, draft.SEOScore).Equal(86)
	gt.A(t, draft.Tags).Length(2)

	// The outline rides in the prompt as JSON.
	gt.True(t, strings.Contains(prompt, `"Why Automation Wins"`))
}

func TestGeneratePodcastScript(t *testing.T) {
	var prompt string
	client := respondWith(`{
		"title": "Scaling a Podcast Studio",
		"sections": [
			{"title": "Intro", "speaker_tag": "HOST1", "content": "Welcome!", "ssml_content": "<speak>Welcome!</speak>", "duration": 5}
		],
		"total_duration": 30,
		"show_notes": "00:00 Intro"
	}`, &prompt)

	svc := contentgen.New(client)
	script := gt.R1(svc.GeneratePodcastScript(context.Background(), &contentgen.ContentOutline{
		Title: "Scaling a Podcast Studio",
	}, types.HostTypeMorningShow)).NoError(t)

	gt.A(t, script.Sections).Length(1)
	gt.Value(t, script.Sections[0].SpeakerTag).Equal("HOST1")
	gt.Value(t, script.TotalDuration).Equal(30)

	gt.True(t, strings.Contains(prompt, "Host type: morning_show"))
}

func TestEnhanceContent(t *testing.T) {
	client := respondWith(`{
		"content": "Tighter intro.",
		"summary": "Shortened the introduction.",
		"suggestions": ["add a call to action"]
	}`, nil)

	svc := contentgen.New(client)
	enhanced := gt.R1(svc.EnhanceContent(context.Background(),
		"A long meandering intro.", "tighten the intro")).NoError(t)

	gt.Value(t, enhanced.Content).Equal("Tighter intro.")
	gt.A(t, enhanced.Suggestions).Length(1)

	_, err := svc.EnhanceContent(context.Background(), "", "")
	gt.Error(t, err)
}

func TestGenerateMalformedResponse(t *testing.T) {
	client := respondWith("not json", nil)

	svc := contentgen.New(client)
	_, err := svc.GenerateBlogDraft(context.Background(), &contentgen.ContentOutline{Title: "X"})
	gt.Error(t, err)
}
