package cfg

type Cfg struct {
	// Application configuration
	Port         string
	DataDir      string
	SeedFile     string
	ScanInterval int
	FetchDelayMs int

	// Reddit data sources
	RedditClientID     string
	RedditClientSecret string
	BraveAPIKey        string
	SearchLang         string

	// Response generation
	GeminiAPIKey string
	GeminiModel  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
