package config

const (
	defaultConfigPath       = "~/.config/notifer/config.toml"
	projectConfigName       = "notifer.toml"
	defaultServerURL        = "https://app.notifer.io"
	defaultPriority         = 3
	defaultCredentialsFile  = "~/.config/notifer/credentials.toml"
	defaultCredentialsEnv   = "NOTIFER_TOKEN_"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	minDefaultPriority      = 1
	maxDefaultPriority      = 5
	serverURLSchemeHTTP     = "http://"
	serverURLSchemeHTTPS    = "https://"
	envServerURL            = "NOTIFER_SERVER_URL"
	envDefaultTopic         = "NOTIFER_TOPIC"
	envDefaultCredentialsID = "NOTIFER_CREDENTIALS_ID"
)

// DefaultServerURL is the hosted notifer endpoint.
const DefaultServerURL = defaultServerURL

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Defaults: Defaults{
			ServerURL: defaultServerURL,
			Priority:  defaultPriority,
		},
		Credentials: Credentials{
			File:      defaultCredentialsFile,
			EnvPrefix: defaultCredentialsEnv,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
