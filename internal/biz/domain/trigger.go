package domain

import (
	"strings"
	"unicode"
)

// SummarizeKeyword starts an explicit summary command
const SummarizeKeyword = "总结"

// DefaultQATrigger starts a follow-up question
const DefaultQATrigger = "问"

// TriggerKind classifies a text message
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerSummarize
	TriggerQuestion
)

// Trigger is the parsed form of a text message
type Trigger struct {
	Kind     TriggerKind
	URL      string // Inline URL of a summarize command, empty if none or not allowed
	Question string // Question text of a question command
}

// TriggerParser recognizes summarize and question commands
type TriggerParser struct {
	GroupPrefixes []string // e.g. "@bot", tried in order for group messages
	QATrigger     string
	Filter        *URLFilter
}

// Parse classifies text sent in a group or direct chat
func (p *TriggerParser) Parse(text string, isGroup bool) Trigger {
	content := strings.TrimSpace(text)
	if isGroup {
		content = p.stripGroupPrefix(content)
	}

	if strings.HasPrefix(content, SummarizeKeyword) {
		trigger := Trigger{Kind: TriggerSummarize}
		fields := strings.Fields(content)
		if len(fields) > 1 && p.Filter != nil && p.Filter.IsAllowed(fields[1]) {
			trigger.URL = strings.TrimSpace(fields[1])
		}
		return trigger
	}

	qa := p.QATrigger
	if qa == "" {
		qa = DefaultQATrigger
	}
	if strings.HasPrefix(content, qa) {
		question := strings.TrimSpace(strings.TrimPrefix(content, qa))
		if question != "" {
			return Trigger{Kind: TriggerQuestion, Question: question}
		}
	}

	return Trigger{Kind: TriggerNone}
}

// stripGroupPrefix removes the first matching prefix. A prefix only matches
// when whitespace follows it; WeChat puts U+2005 after an @mention.
func (p *TriggerParser) stripGroupPrefix(content string) string {
	for _, prefix := range p.GroupPrefixes {
		if prefix == "" || !strings.HasPrefix(content, prefix) {
			continue
		}
		rest := content[len(prefix):]
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		if len(trimmed) == len(rest) {
			continue
		}
		return trimmed
	}
	return content
}
