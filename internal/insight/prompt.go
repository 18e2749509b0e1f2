package insight

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every model call in the pipeline.
const SystemPrompt = `You are an expert in analyzing technology podcasts, extracting key career insights, and providing actionable recommendations tailored to professionals in fast-growing startups.

Your primary goal is to help users translate insights from industry leaders into concrete actions that accelerate their professional growth. You will analyze podcast transcripts to identify:

1. Key career takeaways for software engineers, product builders, and startup operators
2. Skills and strategies that can improve the user's impact in their role
3. Lessons from top founders and investors that apply to the user's long-term career trajectory
4. Opportunities for networking, leadership development, and industry positioning

Ensure your responses are clear, structured, and tailored to the user's career path.`

const extractionInstructions = `Extract career insights from the following podcast transcript segment. Return a JSON array of fragments. Each fragment object must have these fields:

- "text": concise statement of the insight (string, max 400 chars)
- "kind": one of "lesson", "quote", "fact", "action"

Rules:
- Extract lessons, habits, frameworks, and strategies relevant to careers in technology and startups
- Use "quote" for memorable verbatim statements, attributing the speaker when named
- Use "action" for concrete steps a listener could take
- Each fragment must be understandable on its own, without the surrounding transcript
- Skip filler, ads, and small talk
- Return an empty array [] if the segment contains nothing worth keeping

Respond with ONLY the JSON array, no other text.`

// BuildExtractionPrompt creates the per-chunk prompt. The user context
// is included so extraction already favors relevant material.
func BuildExtractionPrompt(docTitle, userContext, chunkText string, index, total int) string {
	var sb strings.Builder
	if userContext != "" {
		sb.WriteString(userContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString(extractionInstructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Podcast: %q (segment %d of %d)\n", docTitle, index+1, total))
	sb.WriteString("---\n")
	sb.WriteString(chunkText)
	return sb.String()
}

const synthesisInstructions = `Please analyze the following career insights extracted from a podcast transcript and provide key takeaways that are directly relevant to my career growth, technical development, and long-term trajectory. Structure your response as follows:

## Key Career Lessons
What skills, mindsets, and strategies from the podcast are most relevant to my role and future growth?

## Actionable Career Moves
What specific actions should I take in the next 6-12 months to develop my skills, expand my network, or increase my impact?

## Lessons from Top Operators & Investors
What habits or frameworks from experienced founders, investors, or executives can I apply to my career?

## Opportunities to Apply These Insights
How can I integrate these lessons into my current role?

Use exactly those four "## " headings. Base every takeaway strictly on the insights listed below; do not introduce lessons, quotes, or facts that are not supported by them.`

// BuildSynthesisPrompt creates the final report prompt over all
// fragments (or intermediate digests).
func BuildSynthesisPrompt(docTitle, userContext string, fragments []Fragment) string {
	var sb strings.Builder
	if userContext != "" {
		sb.WriteString(userContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString(synthesisInstructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Podcast: %q\n", docTitle))
	sb.WriteString("---\n")
	writeFragments(&sb, fragments)
	return sb.String()
}

const digestInstructions = `Condense the following career insights from a podcast transcript into a shorter list. Merge duplicates, keep the most specific and actionable items, and preserve attributed quotes. Do not invent items that are not in the input. Return a JSON array of fragments with "text" and "kind" fields, same format as the input.

Respond with ONLY the JSON array, no other text.`

// BuildDigestPrompt creates the intermediate fold prompt used when the
// full fragment set is too large for a single synthesis call.
func BuildDigestPrompt(docTitle string, fragments []Fragment) string {
	var sb strings.Builder
	sb.WriteString(digestInstructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Podcast: %q\n", docTitle))
	sb.WriteString("---\n")
	writeFragments(&sb, fragments)
	return sb.String()
}

func writeFragments(sb *strings.Builder, fragments []Fragment) {
	for _, f := range fragments {
		sb.WriteString("- [")
		sb.WriteString(f.Kind)
		sb.WriteString("] ")
		sb.WriteString(f.Text)
		if f.Page > 0 {
			sb.WriteString(fmt.Sprintf(" (p.%d)", f.Page))
		}
		sb.WriteString("\n")
	}
}
