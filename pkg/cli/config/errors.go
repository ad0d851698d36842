package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration loading
var (
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrInvalidDataset = goerr.New("invalid dataset")
	ErrConfigNotFound = goerr.New("configuration file not found")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	DatasetPathKey = "dataset_path"
	RecordKey      = "record"
)
