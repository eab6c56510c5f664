package log

type Config struct {
	// Name is included as the "logger" field on every entry.
	Name string `conf:"name" yaml:"name" json:"name"`

	// Level is one of debug, info, warn, error.
	Level string `conf:"level" yaml:"level" json:"level"`

	// Format is one of json, console.
	Format string `conf:"format" yaml:"format" json:"format"`

	File FileConfig `conf:"file" yaml:"file" json:"file"`
}

// FileConfig configures rotating file output via lumberjack.
type FileConfig struct {
	Enabled    bool   `conf:"enabled" yaml:"enabled" json:"enabled"`
	Path       string `conf:"path" yaml:"path" json:"path"`
	MaxSizeMB  int    `conf:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `conf:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `conf:"max_age_days" yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `conf:"compress" yaml:"compress" json:"compress"`
}
