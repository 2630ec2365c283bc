package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath      string
	SourcesFile string
	OutputDir   string
	AudioDir    string

	// Application configuration
	Port              string
	APIAccessKey      string
	SchedulerInterval int

	// Pipeline configuration
	TargetLanguage string
	MaxArticles    int
	MaxSentences   int
	FetchTimeout   int
	ArticleRate    float64

	// Model backends
	LLMBaseURL       string
	LLMAPIKey        string
	SummaryModel     string
	TranslationModel string
	BroadcastModel   string
	TTSModel         string
	TTSVoice         string

	// Graph database
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) SchedulerIntervalDuration() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}
