// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/atinyakov/IdentityGrid/internal/storage"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the HTTP server's listening address (ip:port).
	Addr string `json:"addr" yaml:"addr"`

	// LogLevel is the minimum zap level that gets logged.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Storage selects the persistence backend for the account collection.
	Storage storage.Config `json:"storage" yaml:"storage"`

	// Config is the path to the config file.
	Config string `json:"-" yaml:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init registers the command-line flags with their default values.
func init() {
	registerFlags(flag.CommandLine, options)
}

func registerFlags(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.Addr, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar((*string)(&o.Storage.Backend), "storage", string(storage.BackendFile),
		"storage backend: memory | file | sqlite | postgres | badger | redis")
	fs.StringVar(&o.Storage.Path, "path", "", "storage directory or database file")
	fs.StringVar(&o.Storage.DSN, "d", "", "postgres connection string")
	fs.StringVar(&o.Storage.RedisAddr, "redis", "", "redis address (host:port)")
	fs.StringVar(&o.Storage.Codec, "codec", "json", "storage encoding: json | msgpack")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file (.json, .yaml or .yml)")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the config file and environment
// variables, in that order of increasing precedence. It returns a pointer
// to the Options struct containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	if err := load(options, os.Getenv); err != nil {
		log.Fatal(err)
	}
	return options
}

// load applies the config file and environment overrides to o.
func load(o *Options, getenv func(string) string) error {
	if configPath := getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			if err := readFile(o.Config, o); err != nil {
				return err
			}
		}
	}

	if v := getenv("SERVER_ADDRESS"); v != "" {
		o.Addr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	if v := getenv("STORAGE_BACKEND"); v != "" {
		o.Storage.Backend = storage.Backend(v)
	}
	if v := getenv("STORAGE_PATH"); v != "" {
		o.Storage.Path = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		o.Storage.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		o.Storage.RedisAddr = v
	}
	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		o.Storage.RedisDB = n
	}
	if v := getenv("STORAGE_CODEC"); v != "" {
		o.Storage.Codec = v
	}
	return nil
}

func readFile(path string, o *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, o)
	default:
		err = json.Unmarshal(data, o)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
