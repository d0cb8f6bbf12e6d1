package config

const (
	defaultTarget  = "http://localhost:7777"
	defaultTimeout = "20s"
	defaultModel   = "Llama3.2-3B"

	defaultMockListen          = ":7777"
	defaultMockStore           = "local"
	defaultEmbeddingDimensions = 16

	defaultCollection = "default"
	defaultSearchK    = 5

	defaultLogLevel = "info"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Target:  defaultTarget,
			Timeout: defaultTimeout,
			Model:   defaultModel,
		},
		Mock: MockConfig{
			Listen:              defaultMockListen,
			Store:               defaultMockStore,
			EmbeddingDimensions: defaultEmbeddingDimensions,
		},
		Memory: MemoryConfig{
			Collection: defaultCollection,
			K:          defaultSearchK,
		},
		Log: LogConfig{
			Level: defaultLogLevel,
		},
	}
}
