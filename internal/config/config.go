package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL  = "http://localhost:8000"
	defaultLogName = "ragchat-tui.log"
	maxTimeout     = 600
)

// Config is the resolved runtime configuration of the chat client.
type Config struct {
	APIURL    string
	Timeout   time.Duration
	LogFile   string
	Debug     bool
	AltScreen bool
	Greeting  string
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// without overriding variables already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses command-line args with environment fallbacks from getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := lookup{getenv: getenv}

	flags := flag.NewFlagSet("ragchat-tui", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	cfg := Config{}
	timeoutSeconds := 0
	flags.StringVar(&cfg.APIURL, "api-url", env.or("RAGCHAT_API_URL", defaultAPIURL), "Chat service base URL (POST <url>/chat)")
	flags.IntVar(&timeoutSeconds, "timeout", env.orInt("RAGCHAT_TIMEOUT", 0), "Per-request timeout seconds (0 waits indefinitely)")
	flags.StringVar(&cfg.LogFile, "log-file", env.or("RAGCHAT_LOG_FILE", filepath.Join(os.TempDir(), defaultLogName)), "Log file path ('-' disables logging)")
	flags.BoolVar(&cfg.Debug, "debug", env.orBool("RAGCHAT_DEBUG", false), "Enable debug logging")
	flags.BoolVar(&cfg.AltScreen, "alt-screen", env.orBool("RAGCHAT_ALT_SCREEN", true), "Use alternate screen buffer")
	flags.StringVar(&cfg.Greeting, "greeting", env.or("RAGCHAT_GREETING", ""), "Override the seed bot greeting")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if flags.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	parsed, err := url.Parse(cfg.APIURL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid api url %q: scheme must be http or https", cfg.APIURL)
	}
	if parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid api url %q: missing host", cfg.APIURL)
	}
	if timeoutSeconds < 0 || timeoutSeconds > maxTimeout {
		return Config{}, fmt.Errorf("timeout must be between 0 and %d seconds, got %d", maxTimeout, timeoutSeconds)
	}
	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	return cfg, nil
}

type lookup struct {
	getenv func(string) string
}

func (l lookup) or(key, fallback string) string {
	value := strings.TrimSpace(l.getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func (l lookup) orInt(key string, fallback int) int {
	value := strings.TrimSpace(l.getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (l lookup) orBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(l.getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
