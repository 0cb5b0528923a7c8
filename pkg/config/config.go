package config

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads the given .env files into the process environment.
// A missing file is only a notice; real environment variables still apply.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			slog.Info("dotenv not loaded, using system environment", "path", p, "error", err)
		}
	}
}

// NewViper returns a viper instance that resolves keys from the environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
