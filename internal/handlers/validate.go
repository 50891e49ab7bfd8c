package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"postcraft/internal/models"
)

// Validation limits for stored records and export requests.
const (
	maxMemoryLen     = 20_000
	maxPromptTextLen = 10_000
	maxRecordTextLen = 200_000
	maxExportSlides  = 20
)

// validateMemory checks a style sample and returns the first error found.
func validateMemory(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Memory text is required."
	}
	if utf8.RuneCountInString(text) > maxMemoryLen {
		return "Memory text is too long (max 20,000 characters)."
	}
	return ""
}

// validatePrompt checks prompt inputs. title is skipped when checkTitle is
// false, which is the case for updates.
func validatePrompt(title, text string, checkTitle bool) string {
	if checkTitle {
		title = strings.TrimSpace(title)
		if title == "" {
			return "Title is required."
		}
		if utf8.RuneCountInString(title) > models.MaxPromptTitleLen {
			return fmt.Sprintf("Title is too long (max %d characters).", models.MaxPromptTitleLen)
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "Prompt text is required."
	}
	if utf8.RuneCountInString(text) > maxPromptTextLen {
		return "Prompt text is too long (max 10,000 characters)."
	}
	return ""
}

// validateResult checks a record before it is stored.
func validateResult(r *models.Result) string {
	if r.Empty() {
		return "Nothing to save: social post and newsletter are both empty."
	}
	if utf8.RuneCountInString(r.SocialPost) > maxRecordTextLen ||
		utf8.RuneCountInString(r.Newsletter) > maxRecordTextLen {
		return "Content is too long to save."
	}
	if utf8.RuneCountInString(r.Title) > 300 {
		return "Title is too long (max 300 characters)."
	}
	return ""
}
