// Package normalize maps free-form tool names and descriptions onto the
// canonical shapes the pipeline ranks and deduplicates with.
package normalize

import (
	"strings"
	"unicode"
)

// MinKeyLen is the shortest normalized key considered a real item name.
const MinKeyLen = 3

// maxKeyLen caps normalized keys so pathological names stay comparable.
const maxKeyLen = 64

// Key projects a display name onto its canonical dedup key: lowercase,
// alphanumerics only, length-capped. Two candidates sharing a key are the
// same item.
func Key(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
		if b.Len() >= maxKeyLen {
			break
		}
	}
	k := b.String()
	if len(k) > maxKeyLen {
		k = k[:maxKeyLen]
	}
	return k
}

// Blacklisted reports whether key contains any of the configured blacklist
// substrings. Matching is deliberately substring-based: an incumbent name
// embedded in a longer one is still the incumbent.
func Blacklisted(key string, blacklist []string) bool {
	for _, b := range blacklist {
		sub := Key(b)
		if sub == "" {
			continue
		}
		if strings.Contains(key, sub) {
			return true
		}
	}
	return false
}

// Category is a fixed taxonomy bucket for discovered tools.
type Category string

const (
	ChatAssistants  Category = "chat-assistants"
	ImageGeneration Category = "image-generation"
	VideoGeneration Category = "video-generation"
	AudioSpeech     Category = "audio-speech"
	CodingDev       Category = "coding-dev"
	WritingContent  Category = "writing-content"
	Productivity    Category = "productivity"
	DataAnalytics   Category = "data-analytics"
	Other           Category = "other"
)

// AllCategories returns the taxonomy in priority order: the first category
// whose keywords match wins.
func AllCategories() []Category {
	return []Category{
		ImageGeneration,
		VideoGeneration,
		AudioSpeech,
		CodingDev,
		ChatAssistants,
		WritingContent,
		DataAnalytics,
		Productivity,
	}
}

var categoryKeywords = map[Category][]string{
	ImageGeneration: {
		"image", "photo", "picture", "diffusion", "text-to-image", "avatar",
		"art generator", "upscale", "inpaint", "wallpaper", "logo",
	},
	VideoGeneration: {
		"video", "text-to-video", "animation", "motion", "film", "clip",
		"lip sync", "deepfake",
	},
	AudioSpeech: {
		"audio", "voice", "speech", "tts", "text-to-speech", "transcription",
		"music", "podcast", "sound", "whisper", "song",
	},
	CodingDev: {
		"code", "coding", "developer", "programming", "ide", "compiler",
		"debug", "sdk", "api", "cli", "terminal", "copilot", "autocomplete",
		"refactor", "pull request", "repository",
	},
	ChatAssistants: {
		"chat", "chatbot", "assistant", "conversation", "agent", "companion",
		"llm", "gpt", "question answering",
	},
	WritingContent: {
		"writing", "writer", "copywriting", "blog", "content", "summariz",
		"translation", "grammar", "seo", "email", "newsletter", "paraphras",
	},
	DataAnalytics: {
		"data", "analytics", "dashboard", "sql", "spreadsheet", "etl",
		"visualization", "scraping", "forecast", "bi ",
	},
	Productivity: {
		"productivity", "workflow", "automation", "meeting", "notes",
		"calendar", "task", "no-code", "presentation", "search engine",
	},
}

// Categorize picks the first category, in priority order, with a keyword
// hit in the name, description, or tags. Falls back to Other.
func Categorize(name, description string, tags []string) Category {
	text := strings.ToLower(name + " " + description + " " + strings.Join(tags, " "))

	for _, cat := range AllCategories() {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				return cat
			}
		}
	}
	return Other
}
