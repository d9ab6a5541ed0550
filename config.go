package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// ScenarioFilePath is the filepath to the scenario definitions.
	ScenarioFilePath string
	// OutputDir is the directory csv exports are written to.
	OutputDir string
	// Persist is the run persistence flag.
	Persist bool
	// StoreEndpoint represents the run store connection endpoint.
	StoreEndpoint string
	// StoreUser is the run store user.
	StoreUser string
	// StorePass is the run store user pass.
	StorePass string
	// RunIntervalHours is the interval between scheduled scenario re-runs.
	RunIntervalHours int

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.ScenarioFilePath == "" {
		errs = errors.Join(errs, fmt.Errorf("scenario filepath cannot be an empty string"))
	}
	if cfg.OutputDir == "" {
		errs = errors.Join(errs, fmt.Errorf("output directory cannot be an empty string"))
	}
	if cfg.Persist && cfg.StoreEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("store endpoint cannot be an empty string when persisting"))
	}
	if cfg.RunIntervalHours < 0 {
		errs = errors.Join(errs, fmt.Errorf("run interval cannot be negative"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("scenarios", &cfg.ScenarioFilePath, "the filepath to the scenario definitions")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("outputdir", &cfg.OutputDir, "the directory csv exports are written to")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("persist", &cfg.Persist, "the run persistence flag")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storeendpoint", &cfg.StoreEndpoint, "the run store endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storeuser", &cfg.StoreUser, "the run store user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storepass", &cfg.StorePass, "the run store pass")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("runintervalhours", &cfg.RunIntervalHours, "the interval in hours between scenario re-runs")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
