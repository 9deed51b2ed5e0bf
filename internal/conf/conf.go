package conf

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/usecase"
)

// EnvPrefix prefixes environment overrides, e.g. JINASUM_AUTO_SUM
const EnvPrefix = "jinasum"

// Config represents application configuration
type Config struct {
	// Extraction and summarization
	JinaReaderBase  string `mapstructure:"jina_reader_base"`
	JinaReaderRPM   int    `mapstructure:"jina_reader_rpm"` // 0 means unlimited
	JinaReaderBurst int    `mapstructure:"jina_reader_burst"`
	MaxWords        int    `mapstructure:"max_words"`
	Prompt          string `mapstructure:"prompt"` // Overrides the prompts file when set

	// URL filter
	WhiteURLList []string `mapstructure:"white_url_list"`
	BlackURLList []string `mapstructure:"black_url_list"`

	// Access policy
	AutoSum        bool     `mapstructure:"auto_sum"`
	WhiteGroupList []string `mapstructure:"white_group_list"`
	BlackGroupList []string `mapstructure:"black_group_list"`
	WhiteUserList  []string `mapstructure:"white_user_list"`
	BlackUserList  []string `mapstructure:"black_user_list"`

	// Caches, in seconds
	PendingMessagesTimeout int `mapstructure:"pending_messages_timeout"`
	ContentCacheTimeout    int `mapstructure:"content_cache_timeout"`

	QATrigger string `mapstructure:"qa_trigger"`

	// Chat completion
	OpenAIAPIBase string `mapstructure:"open_ai_api_base"`
	OpenAIAPIKey  string `mapstructure:"open_ai_api_key"`
	OpenAIModel   string `mapstructure:"open_ai_model"`

	// gewechat gateway
	GewechatBaseURL string   `mapstructure:"gewechat_base_url"`
	GewechatToken   string   `mapstructure:"gewechat_token"`
	GewechatAppID   string   `mapstructure:"gewechat_app_id"`
	GroupChatPrefix []string `mapstructure:"group_chat_prefix"`

	// Process
	ListenAddr       string `mapstructure:"listen_addr"`
	CallbackPath     string `mapstructure:"callback_path"`
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	CacheKeyStrategy string `mapstructure:"cache_key_strategy"`
	PromptsPath      string `mapstructure:"prompts_path"`

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig `mapstructure:"-"`
}

// SetDefaults registers the default of every option on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("jina_reader_base", "https://r.jina.ai")
	v.SetDefault("jina_reader_rpm", 0)
	v.SetDefault("jina_reader_burst", 4)
	v.SetDefault("max_words", usecase.DefaultMaxWords)
	v.SetDefault("prompt", "")
	v.SetDefault("white_url_list", []string{})
	v.SetDefault("black_url_list", []string{
		"https://support.weixin.qq.com",          // Channels videos
		"https://channels-aladin.wxqcloud.qq.com", // Channels music
	})
	v.SetDefault("auto_sum", true)
	v.SetDefault("white_group_list", []string{})
	v.SetDefault("black_group_list", []string{})
	v.SetDefault("white_user_list", []string{})
	v.SetDefault("black_user_list", []string{})
	v.SetDefault("pending_messages_timeout", 60)
	v.SetDefault("content_cache_timeout", 300)
	v.SetDefault("qa_trigger", domain.DefaultQATrigger)
	v.SetDefault("open_ai_api_base", "https://api.openai.com/v1")
	v.SetDefault("open_ai_api_key", "")
	v.SetDefault("open_ai_model", "gpt-4o-mini")
	v.SetDefault("gewechat_base_url", "")
	v.SetDefault("gewechat_token", "")
	v.SetDefault("gewechat_app_id", "")
	v.SetDefault("group_chat_prefix", []string{})
	v.SetDefault("listen_addr", ":9919")
	v.SetDefault("callback_path", "/v2/api/callback/collect")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache_key_strategy", "display")
	v.SetDefault("prompts_path", "")
}

// Load loads configuration from .env, an optional config file and the
// environment. An empty path looks for config.{json,yaml} in the working
// directory and configs/; a missing file is not an error then.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "config", Message: err.Error()}
		}
	}

	return FromViper(v)
}

// FromViper decodes a populated viper instance and loads the prompts file
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, &ConfigError{Field: "config", Message: err.Error()}
	}

	prompts, err := LoadPromptsConfig(c.PromptsPath)
	if err != nil {
		return nil, &ConfigError{Field: "prompts_path", Message: err.Error()}
	}
	c.Prompts = prompts

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ToPromptConfig converts to prompt configuration
func (c *Config) ToPromptConfig() usecase.PromptConfig {
	p := c.Prompts
	if p == nil {
		p = DefaultPromptsConfig()
	}

	cfg := usecase.PromptConfig{
		SummaryPrompt:   p.Summary.Prompt,
		QATemplate:      p.Question.Template,
		MaxWords:        c.MaxWords,
		SummaryNotice:   p.Summary.Notice,
		QuestionNotice:  p.Question.Notice,
		ExpiredNotice:   p.Question.Expired,
		InvalidURL:      p.Replies.InvalidURL,
		SummaryFailure:  p.Summary.Failure,
		QuestionFailure: p.Question.Failure,
	}
	if c.Prompt != "" {
		cfg.SummaryPrompt = c.Prompt
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = usecase.DefaultMaxWords
	}
	return cfg
}

// ToPolicy converts to the access policy
func (c *Config) ToPolicy() domain.AccessPolicy {
	return domain.AccessPolicy{
		AutoSum:        c.AutoSum,
		WhiteGroupList: c.WhiteGroupList,
		BlackGroupList: c.BlackGroupList,
		WhiteUserList:  c.WhiteUserList,
		BlackUserList:  c.BlackUserList,
	}
}

// ToURLFilter converts to the URL filter
func (c *Config) ToURLFilter() domain.URLFilter {
	return domain.URLFilter{
		Whitelist: c.WhiteURLList,
		Blacklist: c.BlackURLList,
	}
}

// PendingTimeout is how long a share waits for an explicit command
func (c *Config) PendingTimeout() time.Duration {
	return time.Duration(c.PendingMessagesTimeout) * time.Second
}

// ContentTimeout is how long a summary answers follow-up questions
func (c *Config) ContentTimeout() time.Duration {
	return time.Duration(c.ContentCacheTimeout) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JinaReaderBase == "" {
		return &ConfigError{Field: "jina_reader_base", Message: "required"}
	}
	if c.JinaReaderRPM < 0 {
		return &ConfigError{Field: "jina_reader_rpm", Message: "must not be negative"}
	}
	if c.PendingMessagesTimeout <= 0 {
		return &ConfigError{Field: "pending_messages_timeout", Message: "must be positive"}
	}
	if c.ContentCacheTimeout <= 0 {
		return &ConfigError{Field: "content_cache_timeout", Message: "must be positive"}
	}
	if strings.TrimSpace(c.QATrigger) == "" {
		return &ConfigError{Field: "qa_trigger", Message: "required"}
	}
	if _, err := usecase.KeyStrategyByName(c.CacheKeyStrategy); err != nil {
		return &ConfigError{Field: "cache_key_strategy", Message: err.Error()}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "log_format", Message: "must be text or json"}
	}
	return nil
}

// ValidateServe checks the options only the long-running bot needs
func (c *Config) ValidateServe() error {
	if c.OpenAIAPIKey == "" {
		return &ConfigError{Field: "open_ai_api_key", Message: "required"}
	}
	if c.GewechatBaseURL == "" || c.GewechatToken == "" || c.GewechatAppID == "" {
		return &ConfigError{Field: "gewechat_base_url/gewechat_token/gewechat_app_id", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
