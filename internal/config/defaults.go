package config

const (
	defaultConfigPath              = "~/.config/discflight/config.toml"
	defaultDataDir                 = "~/.local/share/discflight"
	defaultLogDir                  = "~/.local/share/discflight/logs"
	defaultDatabaseName            = "discflight.db"
	defaultScraperBind             = "127.0.0.1:8001"
	defaultPredictorBind           = "127.0.0.1:8002"
	defaultPublisherBind           = "127.0.0.1:8004"
	defaultScraperBaseURL          = "https://www.pdga.com"
	defaultScraperListPath         = "/technical-standards/equipment-certification/discs"
	defaultScraperUserAgent        = "discflight/0.1"
	defaultScraperRequestTimeout   = 30
	defaultModelDir                = "~/.cache/discflight/model"
	defaultModelName               = "model.json"
	defaultPublishTriggerURL       = "http://127.0.0.1:8004/create_tweet"
	defaultTriggerTimeout          = 10
	defaultStorageRegion           = "us-east-1"
	defaultStorageRequestTimeout   = 60
	defaultPublisherChannel        = ChannelLog
	defaultPublisherRequestTimeout = 15
	defaultTwitterBaseURL          = "https://api.twitter.com"
	defaultAdminUsername           = "admin"
	defaultLogFormat               = "auto"
	defaultLogLevel                = "info"
)

// Announcement channels accepted by publisher.channel.
const (
	ChannelTwitter = "twitter"
	ChannelLog     = "log"
	ChannelNtfy    = "ntfy"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Auth: Auth{
			AdminUsername: defaultAdminUsername,
		},
		Scraper: Scraper{
			Bind:           defaultScraperBind,
			BaseURL:        defaultScraperBaseURL,
			ListPath:       defaultScraperListPath,
			UserAgent:      defaultScraperUserAgent,
			RequestTimeout: defaultScraperRequestTimeout,
		},
		Predictor: Predictor{
			Bind:              defaultPredictorBind,
			ModelDir:          defaultModelDir,
			ModelName:         defaultModelName,
			PublishTriggerURL: defaultPublishTriggerURL,
			TriggerTimeout:    defaultTriggerTimeout,
		},
		Storage: Storage{
			Region:         defaultStorageRegion,
			RequestTimeout: defaultStorageRequestTimeout,
		},
		Publisher: Publisher{
			Bind:           defaultPublisherBind,
			Channel:        defaultPublisherChannel,
			RequestTimeout: defaultPublisherRequestTimeout,
		},
		Twitter: Twitter{
			BaseURL: defaultTwitterBaseURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
