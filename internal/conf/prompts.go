package conf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devricklin/jina-sum-bridge/internal/biz/usecase"
)

// PromptsConfig contains all prompt and reply texts loaded from YAML
type PromptsConfig struct {
	Summary  SummaryPrompts  `yaml:"summary"`
	Question QuestionPrompts `yaml:"question"`
	Replies  ReplyTexts      `yaml:"replies"`
}

// SummaryPrompts contains the summary flow texts
type SummaryPrompts struct {
	Prompt  string `yaml:"prompt"`
	Notice  string `yaml:"notice"`
	Failure string `yaml:"failure"`
}

// QuestionPrompts contains the question flow texts
type QuestionPrompts struct {
	Template string `yaml:"template"`
	Notice   string `yaml:"notice"`
	Failure  string `yaml:"failure"`
	Expired  string `yaml:"expired"`
}

// ReplyTexts contains standalone replies
type ReplyTexts struct {
	InvalidURL string `yaml:"invalid_url"`
}

// LoadPromptsConfig loads prompts configuration from a YAML file. With an
// empty path a few well-known locations are tried; when none exists the
// defaults are returned.
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
		return parsePrompts(configPath, data)
	}

	paths := []string{
		"configs/prompts.yaml",
		"/etc/jina-sum-bridge/prompts.yaml",
	}
	if execPath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			return parsePrompts(p, data)
		}
	}

	slog.Debug("no prompts.yaml found, using defaults")
	return DefaultPromptsConfig(), nil
}

func parsePrompts(path string, data []byte) (*PromptsConfig, error) {
	slog.Info("loading prompts", "path", path)

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	defaults := DefaultPromptsConfig()

	if c.Summary.Prompt == "" {
		c.Summary.Prompt = defaults.Summary.Prompt
	}
	if c.Summary.Notice == "" {
		c.Summary.Notice = defaults.Summary.Notice
	}
	if c.Summary.Failure == "" {
		c.Summary.Failure = defaults.Summary.Failure
	}

	if c.Question.Template == "" {
		c.Question.Template = defaults.Question.Template
	}
	if c.Question.Notice == "" {
		c.Question.Notice = defaults.Question.Notice
	}
	if c.Question.Failure == "" {
		c.Question.Failure = defaults.Question.Failure
	}
	if c.Question.Expired == "" {
		c.Question.Expired = defaults.Question.Expired
	}

	if c.Replies.InvalidURL == "" {
		c.Replies.InvalidURL = defaults.Replies.InvalidURL
	}
}

// DefaultPromptsConfig returns the default prompts configuration
func DefaultPromptsConfig() *PromptsConfig {
	d := usecase.DefaultPromptConfig
	return &PromptsConfig{
		Summary: SummaryPrompts{
			Prompt:  d.SummaryPrompt,
			Notice:  d.SummaryNotice,
			Failure: d.SummaryFailure,
		},
		Question: QuestionPrompts{
			Template: d.QATemplate,
			Notice:   d.QuestionNotice,
			Failure:  d.QuestionFailure,
			Expired:  d.ExpiredNotice,
		},
		Replies: ReplyTexts{
			InvalidURL: d.InvalidURL,
		},
	}
}
