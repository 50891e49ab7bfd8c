package prompt

import (
	"fmt"
	"strings"

	"postcraft/internal/ai"
)

const writerSystem = "You are an experienced writer who repurposes articles for social media and newsletters. " +
	"Reply with the requested content only."

const socialRequirements = `Requirements:
- Focus on the key insight or value proposition
- Use an engaging hook or question if appropriate
- Never include any hashtags
- The post must have 4 paragraphs.
- Use a bullet point list if appropriate.
- Avoid AI slop. It MUST sound like a real human wrote it.
- No over the top superlatives.
`

const newsletterRequirements = `Requirements:
- Start with a TLDR summary.
- Follow up with an "Introduction" section explaining the setting and the context.
- Then, 1, 2 or 3 sections with the main points of the source.
- Avoid AI slop. It MUST sound like a real human wrote it.
- No over the top superlatives.
- Make sure to outline tradeoffs if you see them.
- The article must be at least 400 words long.
- Close with a main takeaway section.
`

// Social builds the social-post prompt. A pure URL input asks the provider
// to read the page itself.
func (p Prepared) Social() Request {
	var sb strings.Builder
	if p.readsURL() {
		fmt.Fprintf(&sb, "Create an engaging social media post from the content at %s.\n", p.URL)
	} else {
		sb.WriteString("Create an engaging social media post from the following article text")
		p.cite(&sb)
		sb.WriteString(".\n\n")
		sb.WriteString(p.Source)
		sb.WriteString("\n\n")
	}
	sb.WriteString(socialRequirements)
	p.finish(&sb, "Generate only the social media post, no additional text:")
	return p.request(sb.String())
}

// Newsletter builds the newsletter prompt.
func (p Prepared) Newsletter() Request {
	var sb strings.Builder
	if p.readsURL() {
		fmt.Fprintf(&sb, "Transform the content at %s into a well-structured newsletter article.\n", p.URL)
	} else {
		sb.WriteString("Transform the following article text into a well-structured newsletter")
		p.cite(&sb)
		sb.WriteString(".\n\nArticle text:\n")
		sb.WriteString(p.Source)
		sb.WriteString("\n\n")
	}
	sb.WriteString(newsletterRequirements)
	p.finish(&sb, "Generate only the newsletter content, no additional text:")
	return p.request(sb.String())
}

func (p Prepared) readsURL() bool { return p.Mode == ModeURL && p.Source == "" }

func (p Prepared) cite(sb *strings.Builder) {
	if p.URL != "" {
		fmt.Fprintf(sb, " (retrieved from %s)", p.URL)
	}
}

func (p Prepared) finish(sb *strings.Builder, closing string) {
	if p.Style != "" {
		sb.WriteString(p.Style)
	}
	if p.CustomPrompt != "" {
		sb.WriteString("\nAdditional instructions:\n")
		sb.WriteString(p.CustomPrompt)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(closing)
}

func (p Prepared) request(user string) Request {
	return Request{
		System:  writerSystem,
		User:    user,
		Options: ai.Options{URLContext: p.readsURL()},
	}
}

// Summarize asks for a 300-400 word condensation of a long article.
func Summarize(text string) Request {
	return Request{
		System: "You condense long articles without losing their substance.",
		User: "Summarize the following article in 300 to 400 words. Keep every key claim, number and " +
			"trade-off the author makes, and keep the author's framing. Reply with the summary only.\n\n" +
			"Article text:\n" + text,
	}
}

// InferStyle asks for one dense description of the voice shared by the
// samples, to stand in for the samples themselves.
func InferStyle(samples []string) Request {
	var sb strings.Builder
	sb.WriteString("Below are writing samples from one author. Describe their writing style in one dense paragraph: ")
	sb.WriteString("tone, voice, sentence length, vocabulary, formatting habits, use of humor, and how they open and close. ")
	sb.WriteString("Do not quote the samples or summarize their topics. Reply with the description only.\n\n")
	for i, s := range samples {
		fmt.Fprintf(&sb, "Sample %d:\n%s\n\n", i+1, s)
	}
	return Request{
		System: "You are an editor who analyzes writing style.",
		User:   strings.TrimRight(sb.String(), "\n"),
	}
}

// Regenerate rebuilds one piece of content from its source URL. When text
// holds the page already fetched, it is included and the provider is not
// asked to read the URL.
func Regenerate(kind Kind, url, text string) Request {
	var user string
	if kind == KindSocial {
		user = "Please create an engaging social media post based on the content from this URL: " + url + `

Requirements:
- Keep it concise and engaging (under 280 characters if possible)
- Include relevant hashtags
- Make it shareable and attention-grabbing
- Focus on the key insights or value proposition
- Use a conversational, friendly tone

Please provide only the social media post content, no additional formatting or explanations.`
	} else {
		user = "Please create a comprehensive newsletter article based on the content from this URL: " + url + `

Requirements:
- Write a well-structured article with clear sections
- Include an engaging introduction that hooks the reader
- Provide detailed insights and analysis
- Use professional yet accessible language
- Include key takeaways or actionable insights
- Aim for 300-500 words
- Format with proper paragraphs and structure

Please provide only the newsletter article content, no additional formatting or explanations.`
	}
	if text = strings.TrimSpace(text); text != "" {
		return Request{System: writerSystem, User: user + "\n\nPage content:\n" + text}
	}
	return Request{System: writerSystem, User: user, Options: ai.Options{URLContext: true}}
}

// Image builds the text-to-image prompt for a piece of content.
func Image(description string, kind Kind) string {
	platform, format := "newsletter headers", "Banner format"
	if kind == KindSocial {
		platform, format = "social media platforms", "Square or landscape format"
	}
	return fmt.Sprintf(`Create a visually appealing %s image for the following content: %s.

Style requirements:
- Modern, professional design
- High contrast and readable
- Suitable for %s
- Clean typography if text is included
- Engaging visual elements
- %s

Generate an image that would complement this content perfectly.`, kind.Label(), strings.TrimSpace(description), platform, format)
}
