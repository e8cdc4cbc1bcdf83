package sdruntime

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxPromptTokens is the CLIP text encoder context length. Text past this
// many tokens is silently ignored by the model, so prompts are cut to it
// up front and the caller can report exactly what was used.
const MaxPromptTokens = 77

const (
	// DefaultStyle is appended to user prompts unless disabled.
	DefaultStyle = "seamless tileable texture, flat albedo, hand-painted, top-down, even lighting"

	// FallbackPrompt is used when the user gives no prompt.
	FallbackPrompt = "seamless tileable stylized ground texture, flat albedo, even lighting"

	// DefaultNegativePrompt steers the model away from baked-in shading.
	DefaultNegativePrompt = "photorealistic, 3d, global lighting, drop shadow, outer glow, highlights, " +
		"bevel, emboss, vignette, reflection, normal map, bump, displacement, " +
		"noisy, blur, text, logo, watermark"
)

// ValidatePrompt validates a prompt string for image generation.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidPrompt)
	}

	// The prompt is passed as a process argument.
	if strings.ContainsRune(prompt, '\x00') {
		return fmt.Errorf("%w: prompt contains null bytes", ErrInvalidPrompt)
	}

	if len(prompt) > MaxPromptLength {
		return fmt.Errorf("%w: prompt length %d exceeds maximum %d",
			ErrInvalidPrompt, len(prompt), MaxPromptLength)
	}

	return nil
}

// SanitizePrompt trims the prompt and collapses runs of whitespace.
func SanitizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}

// BuildPrompt combines the user prompt with a style suffix.
//
// With styleOff set the user prompt is used alone. An empty user prompt
// always yields FallbackPrompt, and an empty style adds nothing.
func BuildPrompt(user, style string, styleOff bool) string {
	user = SanitizePrompt(user)
	style = SanitizePrompt(style)

	switch {
	case user == "":
		return FallbackPrompt
	case styleOff || style == "":
		return user
	default:
		return user + ", " + style
	}
}

// TruncateTokens cuts text to at most limit tokens and collapses whitespace.
//
// Tokens approximate the CLIP tokenizer: every run of letters or digits is
// one token and every other non-space rune is a token of its own. Two of the
// encoder's slots hold the start and end markers, so limit-2 tokens of text
// are kept. The cut happens right after the last kept token, so the
// result is always a prefix of the sanitized input.
func TruncateTokens(text string, limit int) string {
	text = SanitizePrompt(text)
	budget := limit - 2
	if budget <= 0 {
		return ""
	}

	count := 0
	inWord := false
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			inWord = false
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if inWord {
				continue
			}
			inWord = true
		default:
			inWord = false
		}

		count++
		if count > budget {
			return strings.TrimRightFunc(text[:i], unicode.IsSpace)
		}
	}

	return text
}
