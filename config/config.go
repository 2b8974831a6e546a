package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel      int    `yaml:"log_level"`
	FileExtension string `yaml:"file_extension"`

	// CuePath is the default location searched for a cue sheet when none is
	// given on the command line.
	CuePath string `yaml:"cue_path"`

	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
	TempDir   string `yaml:"temp_dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	applyDefaults(config)
	return config, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.FileExtension == "" {
		config.FileExtension = "mp3"
	}

	if config.CuePath == "" {
		config.CuePath = "cue.txt"
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.DataDir == "" {
		config.Storage.DataDir = "data"
	}

	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "output"
	}

	if config.Storage.TempDir == "" {
		config.Storage.TempDir = os.TempDir()
	}
}
