package usecase

import (
	"strings"
	"unicode/utf8"
)

// PromptConfig contains prompt and reply text configuration
type PromptConfig struct {
	SummaryPrompt string // Instruction placed before the page content
	QATemplate    string // Question prompt (supports {{content}}, {{question}})
	MaxWords      int    // Content budget in characters

	SummaryNotice   string // Progress reply before the first summary attempt
	QuestionNotice  string // Progress reply before the first question attempt
	ExpiredNotice   string // Reply when no fresh summary backs a question
	InvalidURL      string // Reply for a blocked or malformed shared link
	SummaryFailure  string // Prefix of the error reply after the last summary attempt
	QuestionFailure string // Prefix of the error reply after the last question attempt
}

// DefaultMaxWords is the default content budget
const DefaultMaxWords = 8000

// DefaultPromptConfig is the default prompt configuration
var DefaultPromptConfig = PromptConfig{
	SummaryPrompt:   "我需要对下面引号内文档进行总结，总结输出包括以下三个部分：\n📖 一句话总结\n🔑 关键要点,用数字序号列出3-5个文章的核心内容\n🏷 标签: #xx #xx\n请使用emoji让你的表达更生动\n\n",
	QATemplate:      "Given the content:\n'''{{content}}'''\n\nAnswer the question: {{question}}",
	MaxWords:        DefaultMaxWords,
	SummaryNotice:   "🎉正在为您生成总结，请稍候...",
	QuestionNotice:  "🤔 正在思考您的问题，请稍候...",
	ExpiredNotice:   "总结内容已过期或不存在，请重新总结后重试。",
	InvalidURL:      "无效的URL或被禁止的URL。",
	SummaryFailure:  "无法获取该内容: ",
	QuestionFailure: "抱歉，处理您的问题时出错: ",
}

// BuildSummaryPrompt wraps content in the summary instruction
func (c *PromptConfig) BuildSummaryPrompt(content string) string {
	return c.SummaryPrompt + "\n\n'''" + c.Truncate(content) + "'''"
}

// BuildQuestionPrompt embeds content and question in the QA template
func (c *PromptConfig) BuildQuestionPrompt(content, question string) string {
	return strings.NewReplacer(
		"{{content}}", c.Truncate(content),
		"{{question}}", question,
	).Replace(c.QATemplate)
}

// Truncate cuts s to MaxWords characters
func (c *PromptConfig) Truncate(s string) string {
	limit := c.MaxWords
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
