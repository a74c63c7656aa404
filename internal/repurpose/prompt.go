package repurpose

import (
	"strings"
)

// DefaultVoiceInstruction is used in the preamble when no brand voice is given
const DefaultVoiceInstruction = "Maintain a professional and authentic voice."

// SystemPrompt frames the assistant for every model call
const SystemPrompt = "You are an expert content repurposing assistant that creates engaging, platform-optimized content."

// BuildPrompt assembles the full prompt for one platform: a preamble naming
// platform, tone and voice, the source text verbatim, then the platform's
// instruction block. It never fails and never alters the source text.
func BuildPrompt(source string, platform Platform, tone, brandVoice string) string {
	var b strings.Builder

	b.WriteString("You are helping repurpose content for ")
	b.WriteString(string(platform))
	b.WriteString(".\nTone: ")
	b.WriteString(tone)
	b.WriteString("\n")
	if strings.TrimSpace(brandVoice) != "" {
		b.WriteString("Brand voice: ")
		b.WriteString(brandVoice)
	} else {
		b.WriteString(DefaultVoiceInstruction)
	}

	b.WriteString("\n\nORIGINAL CONTENT:\n")
	b.WriteString(source)
	b.WriteString("\n\n")
	b.WriteString(platform.instructions(tone, brandVoice))

	return b.String()
}
