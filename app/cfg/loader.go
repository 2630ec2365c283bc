package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/digest.db" description:"SQLite database file"`
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"./configs/feeds.yaml" description:"YAML file with the news source registry"`
	OutputDir   string `long:"output-dir" env:"OUTPUT_DIR" default:"./output" description:"Directory for daily digest artifacts"`
	AudioDir    string `long:"audio-dir" env:"AUDIO_DIR" default:"./static/audio" description:"Directory for synthesized broadcast audio"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key protecting mutating endpoints (optional)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"0" description:"Seconds between scheduled pipeline runs (0 disables)"`

	// Pipeline configuration
	TargetLanguage string  `long:"target-language" env:"TARGET_LANGUAGE" default:"en" description:"Language all summaries are produced in"`
	MaxArticles    int     `long:"max-articles" env:"MAX_ARTICLES" default:"10" description:"Maximum articles taken from each source per run"`
	MaxSentences   int     `long:"max-sentences" env:"MAX_SENTENCES" default:"3" description:"Maximum sentences per summary"`
	FetchTimeout   int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Feed retrieval timeout in seconds"`
	ArticleRate    float64 `long:"article-rate" env:"ARTICLE_RATE" default:"0" description:"Article downloads per second (0 is unlimited)"`

	// Model backends
	LLMBaseURL       string `long:"llm-base-url" env:"LLM_BASE_URL" default:"http://localhost:11434/v1" description:"OpenAI-compatible API base URL"`
	LLMAPIKey        string `long:"llm-api-key" env:"LLM_API_KEY" default:"ollama" description:"API key for the model backend"`
	SummaryModel     string `long:"summary-model" env:"SUMMARY_MODEL" default:"llama3.2" description:"Model used for abstractive summaries"`
	TranslationModel string `long:"translation-model" env:"TRANSLATION_MODEL" default:"llama3.2" description:"Model used for translation"`
	BroadcastModel   string `long:"broadcast-model" env:"BROADCAST_MODEL" default:"llama3.2" description:"Model used to compose the broadcast script"`
	TTSModel         string `long:"tts-model" env:"TTS_MODEL" default:"tts-1" description:"Speech synthesis model"`
	TTSVoice         string `long:"tts-voice" env:"TTS_VOICE" default:"alloy" description:"Speech synthesis voice"`

	// Graph database
	Neo4jURI      string `long:"neo4j-uri" env:"NEO4J_URI" description:"Neo4j bolt URI (graph export disabled when empty)"`
	Neo4jUser     string `long:"neo4j-user" env:"NEO4J_USER" default:"neo4j" description:"Neo4j user"`
	Neo4jPassword string `long:"neo4j-password" env:"NEO4J_PASSWORD" description:"Neo4j password"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// A missing .env file is not an error; variables already set win.
	_ = godotenv.Load()

	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		SourcesFile:       raw.SourcesFile,
		OutputDir:         raw.OutputDir,
		AudioDir:          raw.AudioDir,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		SchedulerInterval: raw.SchedulerInterval,
		TargetLanguage:    raw.TargetLanguage,
		MaxArticles:       raw.MaxArticles,
		MaxSentences:      raw.MaxSentences,
		FetchTimeout:      raw.FetchTimeout,
		ArticleRate:       raw.ArticleRate,
		LLMBaseURL:        raw.LLMBaseURL,
		LLMAPIKey:         raw.LLMAPIKey,
		SummaryModel:      raw.SummaryModel,
		TranslationModel:  raw.TranslationModel,
		BroadcastModel:    raw.BroadcastModel,
		TTSModel:          raw.TTSModel,
		TTSVoice:          raw.TTSVoice,
		Neo4jURI:          raw.Neo4jURI,
		Neo4jUser:         raw.Neo4jUser,
		Neo4jPassword:     raw.Neo4jPassword,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"max articles":  cfg.MaxArticles,
		"max sentences": cfg.MaxSentences,
		"fetch timeout": cfg.FetchTimeout,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.SchedulerInterval < 0 {
		return fmt.Errorf("scheduler interval must be non-negative")
	}
	if cfg.ArticleRate < 0 {
		return fmt.Errorf("article rate must be non-negative")
	}
	if cfg.TargetLanguage == "" {
		return fmt.Errorf("target language is required")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
