package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage cuts text into chunks of at most maxLen runes. Each cut is
// moved back to a paragraph break, a line break or a space when one exists
// in the second half of the chunk.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	runes := []rune(text)
	var parts []string
	for len(runes) > maxLen {
		cut := splitPoint(runes[:maxLen])
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func splitPoint(chunk []rune) int {
	s := string(chunk)
	half := len(s) / 2
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(s, sep); i > half {
			return utf8.RuneCountInString(s[:i+len(sep)])
		}
	}
	return len(chunk)
}

// FixMarkdown closes code fences and inline code spans the model left open,
// which Telegram would otherwise reject.
func FixMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 4)

	inFence, inInline := false, false
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "```") {
			if inInline {
				b.WriteByte('`')
				inInline = false
			}
			inFence = !inFence
			b.WriteString("```")
			i += 3
			continue
		}
		if text[i] == '`' && !inFence {
			inInline = !inInline
		}
		b.WriteByte(text[i])
		i++
	}

	if inInline {
		b.WriteByte('`')
	}
	if inFence {
		b.WriteString("\n```")
	}
	return b.String()
}

// IsBalanced reports whether FixMarkdown would leave text unchanged.
func IsBalanced(text string) bool {
	return FixMarkdown(text) == text
}
