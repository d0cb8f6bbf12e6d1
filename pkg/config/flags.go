package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on "marcus chat", "marcus complete" and "marcus embed").
type Flag struct {
	// Name is the long flag name (e.g. "target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "t"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddDurationFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagTarget       = "target"
	FlagTimeout      = "timeout"
	FlagIdleTimeout  = "idle-timeout"
	FlagModel        = "model"
	FlagMapModels    = "map-models"
	FlagDoneSentinel = "done-sentinel"

	FlagListen        = "listen"
	FlagStore         = "store"
	FlagSQLitePath    = "sqlite-path"
	FlagChunkDelay    = "chunk-delay"
	FlagEmbeddingDims = "embedding-dimensions"

	FlagCollection = "collection"
	FlagK          = "top-k"

	FlagJSONLogs = "json"
)

// Flags is the registry shared by every marcus command.
var Flags = FlagSet{
	FlagTarget:       {Name: "target", Shorthand: "t", ViperKey: "client.target", Description: "Base URL of the inference service"},
	FlagTimeout:      {Name: "timeout", ViperKey: "client.timeout", Description: "Request timeout (streams: until response headers)"},
	FlagIdleTimeout:  {Name: "idle-timeout", ViperKey: "client.idle_timeout", Description: "Maximum wait between stream reads (0 uses --timeout, negative disables)"},
	FlagModel:        {Name: "model", Shorthand: "m", ViperKey: "client.model", Description: "Model identifier"},
	FlagMapModels:    {Name: "map-models", ViperKey: "client.map_models", Description: "Send provider model ids instead of Llama SKUs"},
	FlagDoneSentinel: {Name: "done-sentinel", ViperKey: "client.done_sentinel", Description: "Data payload that ends a stream (e.g. [DONE])"},

	FlagListen:        {Name: "listen", Shorthand: "l", ViperKey: "mock.listen", Description: "Address for the mock service to listen on"},
	FlagStore:         {Name: "store", ViperKey: "mock.store", Description: "Memory store for the mock service (local, sqlite)"},
	FlagSQLitePath:    {Name: "sqlite-path", Shorthand: "s", ViperKey: "mock.sqlite_path", Description: "Path to the SQLite memory database"},
	FlagChunkDelay:    {Name: "chunk-delay", ViperKey: "mock.chunk_delay", Description: "Delay between streamed chunks"},
	FlagEmbeddingDims: {Name: "embedding-dimensions", ViperKey: "mock.embedding_dimensions", Description: "Dimensionality of mock embeddings"},

	FlagCollection: {Name: "collection", Shorthand: "c", ViperKey: "memory.collection", Description: "Memory collection name"},
	FlagK:          {Name: "top-k", Shorthand: "k", ViperKey: "memory.k", Description: "Number of search results"},

	FlagJSONLogs: {Name: "json", ViperKey: "log.json", Description: "Emit logs as JSON"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddDurationFlag registers a duration flag on cmd from the given FlagSet.
// The default is parsed from the duration string stored in the config.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *time.Duration) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultDuration(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().DurationVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().DurationVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
// Persistent flags inherited from parent commands are bound too.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			f = cmd.InheritedFlags().Lookup(def.Name)
		}
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaults().GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	return defaults().GetUint(viperKey)
}

func defaultDuration(viperKey string) time.Duration {
	return defaults().GetDuration(viperKey)
}

func defaultBool(viperKey string) bool {
	return defaults().GetBool(viperKey)
}
