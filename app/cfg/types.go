package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	StoresDir         string
	Port              string
	BaseUrl           string
	SchedulerInterval int
	ScrapeHour        int
	APIAccessKey      string
	AuthVerifyURL     string

	// Document storage configuration
	StorageBackend string
	StorageDir     string
	BucketURL      string
	BucketName     string
	BucketKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
