package db

type Config struct {
	// Fixture is an optional YAML seed file loaded into the memory
	// store at startup.
	Fixture string `conf:"fixture" yaml:"fixture" json:"fixture"`
}
