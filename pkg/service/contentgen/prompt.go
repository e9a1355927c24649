package contentgen

import (
	"fmt"

	"github.com/m-mizutani/gollem"

	"github.com/createai-lab/createai/pkg/domain/types"
)

func outlineInstruction(contentType types.ContentType, settings OutlineSettings) string {
	switch contentType {
	case types.ContentTypePodcast:
		hostType := settings.HostType
		if hostType == "" {
			hostType = types.HostTypeSingle
		}
		targetLength := settings.TargetLength
		if targetLength <= 0 {
			targetLength = 30
		}
		return fmt.Sprintf(`You are a podcast production expert. Create a structured outline for a podcast episode.
Consider the host type: %s and target duration: %d minutes.
Fill the duration of each section and the estimated total duration in minutes.`, hostType, targetLength)

	case types.ContentTypeBlog:
		targetLength := settings.TargetLength
		if targetLength <= 0 {
			targetLength = 1500
		}
		tone := settings.Tone
		if tone == "" {
			tone = "professional"
		}
		return fmt.Sprintf(`You are a content marketing expert. Create a comprehensive blog post outline that's SEO-optimized and engaging.
Target length: %d words. Tone: %s.`, targetLength, tone)

	case types.ContentTypeEbook:
		targetLength := settings.TargetLength
		if targetLength <= 0 {
			targetLength = 10
		}
		return fmt.Sprintf(`You are an expert ebook author. Create a comprehensive outline for a %d-page ebook.
Structure should be logical and educational. Each section is one chapter.`, targetLength)

	default:
		return "You are a helpful content creation assistant. Create a structured content outline."
	}
}

const blogDraftInstruction = `You are an expert content writer. Create a comprehensive blog post based on the provided outline.
The content should be engaging, SEO-optimized, and well-structured with proper headings.
Write the full post content in markdown, keep the meta description under 160 characters,
estimate the reading time in minutes and score the SEO quality out of 100.`

const podcastScriptInstruction = `You are a podcast script writer. Create an engaging script with proper speaker tags and SSML markup for TTS.
Include natural conversation flow, transitions, and calls-to-action.
Use speaker tags HOST1, HOST2 or GUEST, and include formatted show notes with timestamps.`

const enhanceInstruction = `You are an expert content editor. Improve the provided content following the instruction.
Return the full improved content, a one-line summary of what changed, and further suggestions.`

var outlineSchema = &gollem.Parameter{
	Title:       "ContentOutline",
	Description: "Structured outline for a content project",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"title": {
			Type:        gollem.TypeString,
			Description: "Content title.",
			Required:    true,
		},
		"sections": {
			Type:        gollem.TypeArray,
			Description: "Ordered outline sections.",
			Required:    true,
			Items: &gollem.Parameter{
				Type: gollem.TypeObject,
				Properties: map[string]*gollem.Parameter{
					"title": {
						Type:        gollem.TypeString,
						Description: "Section heading.",
						Required:    true,
					},
					"duration": {
						Type:        gollem.TypeInteger,
						Description: "Estimated section duration in minutes. Podcasts only, 0 otherwise.",
					},
					"key_points": {
						Type:        gollem.TypeArray,
						Description: "Key points covered in this section.",
						Required:    true,
						Items:       &gollem.Parameter{Type: gollem.TypeString},
					},
				},
			},
		},
		"estimated_duration": {
			Type:        gollem.TypeInteger,
			Description: "Estimated total duration in minutes. Podcasts only, 0 otherwise.",
		},
		"target_audience": {
			Type:        gollem.TypeString,
			Description: "Description of the target audience.",
			Required:    true,
		},
		"key_takeaways": {
			Type:        gollem.TypeArray,
			Description: "Main takeaways for the audience.",
			Required:    true,
			Items:       &gollem.Parameter{Type: gollem.TypeString},
		},
	},
}

var blogDraftSchema = &gollem.Parameter{
	Title:       "BlogDraft",
	Description: "Full blog post generated from an outline",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"title": {
			Type:        gollem.TypeString,
			Description: "SEO-optimized title.",
			Required:    true,
		},
		"meta_description": {
			Type:        gollem.TypeString,
			Description: "Compelling meta description under 160 characters.",
			Required:    true,
		},
		"content": {
			Type:        gollem.TypeString,
			Description: "Full blog post content in markdown format.",
			Required:    true,
		},
		"tags": {
			Type:        gollem.TypeArray,
			Description: "Relevant SEO tags.",
			Required:    true,
			Items:       &gollem.Parameter{Type: gollem.TypeString},
		},
		"reading_time": {
			Type:        gollem.TypeInteger,
			Description: "Estimated reading time in minutes.",
			Required:    true,
		},
		"seo_score": {
			Type:        gollem.TypeInteger,
			Description: "SEO quality score out of 100.",
			Required:    true,
		},
	},
}

var podcastScriptSchema = &gollem.Parameter{
	Title:       "PodcastScript",
	Description: "Speaker-tagged podcast script generated from an outline",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"title": {
			Type:        gollem.TypeString,
			Description: "Episode title.",
			Required:    true,
		},
		"sections": {
			Type:        gollem.TypeArray,
			Description: "Ordered script sections.",
			Required:    true,
			Items: &gollem.Parameter{
				Type: gollem.TypeObject,
				Properties: map[string]*gollem.Parameter{
					"title": {
						Type:        gollem.TypeString,
						Description: "Section name.",
						Required:    true,
					},
					"speaker_tag": {
						Type:        gollem.TypeString,
						Description: "HOST1, HOST2 or GUEST.",
						Required:    true,
					},
					"content": {
						Type:        gollem.TypeString,
						Description: "Natural speaking content.",
						Required:    true,
					},
					"ssml_content": {
						Type:        gollem.TypeString,
						Description: "SSML-formatted content with pauses and emphasis.",
						Required:    true,
					},
					"duration": {
						Type:        gollem.TypeInteger,
						Description: "Estimated section duration in minutes.",
						Required:    true,
					},
				},
			},
		},
		"total_duration": {
			Type:        gollem.TypeInteger,
			Description: "Estimated total duration in minutes.",
			Required:    true,
		},
		"show_notes": {
			Type:        gollem.TypeString,
			Description: "Formatted show notes with timestamps.",
			Required:    true,
		},
	},
}

var enhanceSchema = &gollem.Parameter{
	Title:       "EnhancedContent",
	Description: "Result of an improvement pass over existing content",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"content": {
			Type:        gollem.TypeString,
			Description: "The full improved content.",
			Required:    true,
		},
		"summary": {
			Type:        gollem.TypeString,
			Description: "One-line summary of what was changed.",
			Required:    true,
		},
		"suggestions": {
			Type:        gollem.TypeArray,
			Description: "Further improvement suggestions not applied here.",
			Required:    true,
			Items:       &gollem.Parameter{Type: gollem.TypeString},
		},
	},
}
