// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	HeadersFormatRaw = "raw"
	HeadersFormatHex = "hex"

	LoggingFormatJSON    = "json"
	LoggingFormatConsole = "console"

	defaultNetwork = "bitcoin-mainnet"
)

type Config struct {
	Logging  LoggingConfig `yaml:"logging"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Debug    DebugConfig   `yaml:"debug"`
	Indexer  IndexerConfig `yaml:"indexer"`
	State    StateConfig   `yaml:"state"`
	Profiles []string      `yaml:"profiles" envconfig:"PROFILES"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"  envconfig:"LOGGING_LEVEL"`
	Format string `yaml:"format" envconfig:"LOGGING_FORMAT"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"DEBUG_PORT"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

type IndexerConfig struct {
	Network        string `yaml:"network"        envconfig:"INDEXER_NETWORK"`
	HeadersFile    string `yaml:"headersFile"    envconfig:"INDEXER_HEADERS_FILE"`
	HeadersFormat  string `yaml:"headersFormat"  envconfig:"INDEXER_HEADERS_FORMAT"`
	StartHeight    uint32 `yaml:"startHeight"    envconfig:"INDEXER_START_HEIGHT"`
	StartHeader    string `yaml:"startHeader"    envconfig:"INDEXER_START_HEADER"`
	StrictAncestry bool   `yaml:"strictAncestry" envconfig:"INDEXER_STRICT_ANCESTRY"`
}

type StateConfig struct {
	Directory string `yaml:"dir"      envconfig:"STATE_DIR"`
	InMemory  bool   `yaml:"inMemory" envconfig:"STATE_IN_MEMORY"`
}

// Singleton config instance with default values
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level:  "info",
		Format: LoggingFormatJSON,
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Metrics: MetricsConfig{
		ListenAddress: "",
		ListenPort:    8081,
	},
	Indexer: IndexerConfig{
		HeadersFormat: HeadersFormatRaw,
	},
	State: StateConfig{
		Directory: "./.state",
	},
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Load config values from environment variables
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Check profiles
	availableProfiles := GetAvailableProfiles()
	var startProfile *Profile
	for _, profileName := range globalConfig.Profiles {
		profile, ok := Profiles[profileName]
		if !ok {
			return nil, fmt.Errorf(
				"unknown profile: %s: available profiles: %s",
				profileName,
				strings.Join(availableProfiles, ","),
			)
		}
		// Provide default network
		if globalConfig.Indexer.Network == "" {
			globalConfig.Indexer.Network = profile.Network
		} else if globalConfig.Indexer.Network != profile.Network {
			return nil, fmt.Errorf(
				"conflicting networks configured: %s and %s",
				globalConfig.Indexer.Network,
				profile.Network,
			)
		}
		// Use the earliest start point of any profile
		if profile.StartHeader != "" {
			if startProfile == nil ||
				profile.StartHeight < startProfile.StartHeight {
				startProfile = &profile
			}
		}
	}
	// Provide default start point from profile(s)
	if globalConfig.Indexer.StartHeader == "" && startProfile != nil {
		globalConfig.Indexer.StartHeader = startProfile.StartHeader
		globalConfig.Indexer.StartHeight = startProfile.StartHeight
	}
	if globalConfig.Indexer.Network == "" {
		globalConfig.Indexer.Network = defaultNetwork
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func (c *Config) validate() error {
	network := blockchain.NetworkByName(c.Indexer.Network)
	if network == nil {
		return fmt.Errorf(
			"unknown network: %s: available networks: %s",
			c.Indexer.Network,
			strings.Join(blockchain.NetworkNames(), ","),
		)
	}
	switch c.Logging.Format {
	case LoggingFormatJSON, LoggingFormatConsole:
	default:
		return fmt.Errorf(
			"unknown logging format: %s",
			c.Logging.Format,
		)
	}
	switch c.Indexer.HeadersFormat {
	case HeadersFormatRaw, HeadersFormatHex:
	default:
		return fmt.Errorf(
			"unknown headers format: %s",
			c.Indexer.HeadersFormat,
		)
	}
	startBlock, err := c.Indexer.StartBlock()
	if err != nil {
		return err
	}
	if startBlock != nil {
		if err := network.CheckStartBlock(startBlock); err != nil {
			return fmt.Errorf("invalid start header: %w", err)
		}
	}
	return nil
}

// StartBlock returns the configured start block, or nil to start from the
// network genesis block
func (c IndexerConfig) StartBlock() (*blockchain.Block, error) {
	if c.StartHeader == "" {
		return nil, nil
	}
	header, err := blockchain.NewBlockHeaderFromHex(c.StartHeader)
	if err != nil {
		return nil, fmt.Errorf("invalid start header: %w", err)
	}
	if c.StartHeight == 0 {
		return nil, errors.New("start header requires a start height")
	}
	return blockchain.NewBlock(*header, c.StartHeight), nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
