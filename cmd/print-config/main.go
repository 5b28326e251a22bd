// Command print-config loads the configuration exactly as the server does
// (.env, environment, defaults) and prints it as YAML with secrets masked.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/logger"
	"gopkg.in/yaml.v3"
)

func main() {
	out := flag.String("o", "", "Write to this file instead of stdout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.OpenFile(*out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := writeYAML(w, redact(*cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
}

type effectiveConfig struct {
	config.Config `yaml:",inline"`
	// Storage.Enabled is derived during validation and has no yaml key.
	StorageEnabled bool `yaml:"storage_enabled"`
}

func writeYAML(w io.Writer, cfg config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(effectiveConfig{Config: cfg, StorageEnabled: cfg.Storage.Enabled}); err != nil {
		return err
	}
	return enc.Close()
}

// redact works on a copy; the caller's config is left untouched.
func redact(cfg config.Config) config.Config {
	cfg.Server.SessionSecret = logger.MaskToken(cfg.Server.SessionSecret)
	cfg.Server.AdminPassword = logger.MaskToken(cfg.Server.AdminPassword)
	cfg.Database.URL = logger.MaskConnectionString(cfg.Database.URL)
	cfg.Supabase.ServiceKey = logger.MaskToken(cfg.Supabase.ServiceKey)
	cfg.Supabase.AnonKey = logger.MaskToken(cfg.Supabase.AnonKey)
	cfg.Storage.S3SecretAccessKey = logger.MaskToken(cfg.Storage.S3SecretAccessKey)
	cfg.Redis.Password = logger.MaskToken(cfg.Redis.Password)
	cfg.Email.ResendAPIKey = logger.MaskToken(cfg.Email.ResendAPIKey)
	return cfg
}
