package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Checker reads keys from viper and collects every missing or malformed one,
// so a single error can name all of them.
type Checker struct {
	v        *viper.Viper
	problems []string
}

func NewChecker(v *viper.Viper) *Checker {
	return &Checker{v: v}
}

func (c *Checker) NonEmpty(key string) string {
	val := strings.TrimSpace(c.v.GetString(key))
	if val == "" {
		c.problems = append(c.problems, key+" is required")
	}
	return val
}

func (c *Checker) PositiveInt(key string) int {
	raw := c.NonEmpty(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.problems = append(c.problems, fmt.Sprintf("%s must be a positive integer, got %q", key, raw))
		return 0
	}
	return n
}

func (c *Checker) IntDefault(key string, def int) int {
	raw := strings.TrimSpace(c.v.GetString(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s must be an integer, got %q", key, raw))
		return def
	}
	return n
}

func (c *Checker) DurationDefault(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(c.v.GetString(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s must be a duration, got %q", key, raw))
		return def
	}
	return d
}

func (c *Checker) Err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(c.problems, "; "))
}
