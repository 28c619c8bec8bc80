package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
)

const envPrefix = "APICONNECT_"

// LoadEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. With no
// files, ./.env is loaded if present.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(files...)
}

// ApplyEnv overrides credentials from the environment. For a profile named
// "prod", APICONNECT_PROD_CLIENT_SECRET takes precedence over
// APICONNECT_CLIENT_SECRET.
func (p *Profile) ApplyEnv(name string) {
	p.ClientID = lookupEnv(name, "CLIENT_ID", p.ClientID)
	p.ClientSecret = lookupEnv(name, "CLIENT_SECRET", p.ClientSecret)
	p.KeyPassword = lookupEnv(name, "KEY_PASSWORD", p.KeyPassword)
	p.StorePassword = lookupEnv(name, "STORE_PASSWORD", p.StorePassword)
}

func lookupEnv(profile, key, def string) string {
	if profile != "" {
		if v, ok := os.LookupEnv(envPrefix + envName(profile) + "_" + key); ok {
			return v
		}
	}
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return def
}

func envName(profile string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, profile)
}
