package gemini

import (
	"os"
	"strings"
)

// DefaultKeyEnv lists the variables consulted for the API key, in order.
var DefaultKeyEnv = []string{"GEMINI_API_KEY", "API_KEY"}

// EnvKey returns a lookup that reads the API key from the environment each
// time it is called.
func EnvKey(names ...string) func() string {
	if len(names) == 0 {
		names = DefaultKeyEnv
	}
	return func() string {
		for _, name := range names {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				return v
			}
		}
		return ""
	}
}
