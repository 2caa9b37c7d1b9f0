package vfsrconf

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/fsr"
)

const (
	configFileName = ".vfsr"
	envPrefix      = "VFSR"

	KeyMaxIterations      = "align.max_iterations"
	KeyMaxStalls          = "align.max_stalls"
	KeyJobs               = "repack.jobs"
	KeyForce              = "repack.force"
	KeyRequireImprovement = "repack.require_improvement"
	KeyTempPrefix         = "repack.temp_prefix"
	KeyLogJSON            = "log.json"
)

// Config holds every tunable. Values come from flags, then VFSR_*
// environment variables, then the config file, then defaults.
type Config struct {
	MaxIterations      int
	MaxStalls          int
	Jobs               int
	Force              bool
	RequireImprovement bool
	TempPrefix         string
	JSON               bool
}

func setDefaults() {
	viper.SetDefault(KeyMaxIterations, fsr.DefaultMaxIterations)
	viper.SetDefault(KeyMaxStalls, fsr.DefaultMaxStalls)
	viper.SetDefault(KeyJobs, 1)
	viper.SetDefault(KeyForce, false)
	viper.SetDefault(KeyRequireImprovement, true)
	viper.SetDefault(KeyTempPrefix, fsr.DefaultTempPrefix)
	viper.SetDefault(KeyLogJSON, false)
}

// BindFlags lets command line flags override configuration keys. Only flags
// that were actually set take precedence.
func BindFlags(flags *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		f := flags.Lookup(name)
		if f == nil {
			return errors.Errorf("no such flag: --%s", name)
		}
		err := viper.BindPFlag(key, f)
		if err != nil {
			return err
		}
	}
	return nil
}

// Load reads cfgFile, or ~/.vfsr.yaml when cfgFile is empty. A missing
// default file is not an error.
func Load(cfgFile string, log elog.Logger) (*Config, error) {

	if log == nil {
		log = elog.Discard
	}

	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Debugf("no home directory: %v", err)
			return Current()
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(configFileName)
	}

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			log.Debugf("using default configuration")
			return Current()
		}
		return nil, errors.Wrap(err, "failed to read config")
	}

	log.Debugf("using config file: %s", viper.ConfigFileUsed())

	return Current()

}

// Current builds a Config from whatever viper holds right now.
func Current() (*Config, error) {

	c := &Config{
		MaxIterations:      viper.GetInt(KeyMaxIterations),
		MaxStalls:          viper.GetInt(KeyMaxStalls),
		Jobs:               viper.GetInt(KeyJobs),
		Force:              viper.GetBool(KeyForce),
		RequireImprovement: viper.GetBool(KeyRequireImprovement),
		TempPrefix:         viper.GetString(KeyTempPrefix),
		JSON:               viper.GetBool(KeyLogJSON),
	}

	err := c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil

}

func (c *Config) Validate() error {

	if c.MaxIterations < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyMaxIterations, c.MaxIterations)
	}

	if c.MaxStalls < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyMaxStalls, c.MaxStalls)
	}

	if c.Jobs < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyJobs, c.Jobs)
	}

	if c.TempPrefix == "" || strings.ContainsRune(c.TempPrefix, '/') {
		return errors.Errorf("%s must be a non-empty file name prefix, got %q", KeyTempPrefix, c.TempPrefix)
	}

	return nil

}

// Options converts the configuration into repack options.
func (c *Config) Options() fsr.Options {
	return fsr.Options{
		MaxIterations:      c.MaxIterations,
		MaxStalls:          c.MaxStalls,
		Force:              c.Force,
		RequireImprovement: c.RequireImprovement,
	}
}
