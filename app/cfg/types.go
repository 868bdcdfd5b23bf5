package cfg

type Cfg struct {
	// Inbound authentication
	ShortcutsKey string

	// Airtable destination
	AirtableAPIKey    string
	AirtableBaseID    string
	AirtableTableName string
	AirtableEndpoint  string

	// Provider credentials (optional)
	OpenverseAPIKey string
	YouTubeAPIKey   string

	// Application configuration
	JobsDir           string
	Port              string
	WorkerCount       int
	SchedulerInterval int

	// Outbound call timeouts (seconds, per call class)
	SearchTimeout     int
	StoreReadTimeout  int
	StoreWriteTimeout int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
