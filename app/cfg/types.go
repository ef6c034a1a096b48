package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Wiki configuration
	WikiURL     string
	AccessToken string

	// Application configuration
	Article           string
	TemplatesDir      string
	WorkerCount       int
	WindowHours       int
	PreemptiveArchive bool
	RequestTimeout    int
	PageTimeout       int
	SkipURLPrefixes   []string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
