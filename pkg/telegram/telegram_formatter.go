package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxMessageLen = 4090

func reportHeader(part int, at time.Time) string {
	if part == 1 {
		return fmt.Sprintf("📊 *Chart Analysis Report* 📊\n_%s_\n\n", at.Format("2006-01-02 15:04 MST"))
	}
	return fmt.Sprintf("---*Chart Analysis Report Part %d*---\n\n", part)
}

// headerBudget is the longest header any part may carry.
func headerBudget(at time.Time) int {
	first, later := len(reportHeader(1, at)), len(reportHeader(9999, at))
	if first > later {
		return first
	}
	return later
}

// FormatAnalysisForTelegram renders an analysis report as Markdown messages,
// none longer than the Telegram limit. Line breaks are preferred as split
// points; overlong lines are cut between runes.
func FormatAnalysisForTelegram(analysis string, at time.Time) []string {
	if strings.TrimSpace(analysis) == "" {
		return []string{reportHeader(1, at) + "No analysis was produced for this submission."}
	}

	var messages []string
	var current strings.Builder
	part := 1
	current.WriteString(reportHeader(part, at))

	flush := func() {
		messages = append(messages, current.String())
		part++
		current.Reset()
		current.WriteString(reportHeader(part, at))
	}

	budget := maxMessageLen - headerBudget(at)
	for _, line := range strings.SplitAfter(analysis, "\n") {
		if line == "" {
			continue
		}
		for _, piece := range escapeInPieces(line, budget) {
			if current.Len()+len(piece) > maxMessageLen {
				flush()
			}
			current.WriteString(piece)
		}
	}
	messages = append(messages, current.String())

	return messages
}

// escapeInPieces escapes line for Markdown and splits the result so that no
// piece exceeds budget bytes and no escape sequence is cut in half.
func escapeInPieces(line string, budget int) []string {
	escaped := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, line)
	if len(escaped) <= budget {
		return []string{escaped}
	}

	var pieces []string
	var b strings.Builder
	for _, r := range line {
		esc := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, string(r))
		if b.Len()+len(esc) > budget {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteString(esc)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}
