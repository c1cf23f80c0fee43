// Package config loads harvester configuration from a config.yml file, an
// optional .env file and HARVESTER_ prefixed environment variables.
//
// Each package that needs settings owns a small Config struct with
// ApplyDefaults and Validate methods. The top-level run configuration embeds
// ServiceConfig and those package configs:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Executor executor.Config `yaml:"executor" mapstructure:"executor"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("harvester", &cfg, config.WithEnvPrefix("HARVESTER"))
//
// Environment variables map onto nested keys by splitting on underscores, so
// HARVESTER_BOOTSTRAP_POLICY sets bootstrap.policy.
package config
