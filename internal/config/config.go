// Package config resolves settings from defaults, the .fireplace-config file,
// the environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"fireplace_cli/internal/display"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is looked up in the working directory and each of its parents.
const FileName = ".fireplace-config"

// Setting keys. They double as environment variable names and as keys in the
// config file.
const (
	KeyFireplaceIP     = "FIREPLACE_IP"
	KeyTemperatureUnit = "TEMPERATURE_UNIT"
	KeyLogLevel        = "LOG_LEVEL"
	KeyJournalPath     = "JOURNAL_PATH"
	KeyMQTTURL         = "MQTT_URL"
	KeyMQTTTopic       = "MQTT_TOPIC"
	KeyMQTTUsername    = "MQTT_USERNAME"
	KeyMQTTPassword    = "MQTT_PASSWORD"
	KeyHTTPPort        = "HTTP_PORT"
	KeyJWTSecret       = "JWT_SECRET"
	KeyAPIKeyHash      = "API_KEY_HASH"
)

// flagKeys maps flag names registered by BindFlags to setting keys.
var flagKeys = map[string]string{
	"ip":         KeyFireplaceIP,
	"unit":       KeyTemperatureUnit,
	"log-level":  KeyLogLevel,
	"journal":    KeyJournalPath,
	"mqtt-url":   KeyMQTTURL,
	"mqtt-topic": KeyMQTTTopic,
	"http-port":  KeyHTTPPort,
}

// ErrInvalidAddress is returned when the fireplace address is missing or not a
// dotted IPv4 address.
var ErrInvalidAddress = errors.New("invalid or missing IP address")

type MQTT struct {
	URL      string
	Topic    string
	Username string
	Password string
}

// Enabled reports whether a broker is configured.
func (m MQTT) Enabled() bool { return m.URL != "" }

// Config is the resolved configuration.
type Config struct {
	FireplaceIP string
	Unit        display.Unit
	LogLevel    string
	JournalPath string
	MQTT        MQTT
	HTTPPort    string
	JWTSecret   string
	APIKeyHash  string

	// File is the config file that was found, or "" if none was.
	File string
	// FileErr is set when File could not be parsed; its values are then ignored.
	FileErr error
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTemperatureUnit, string(display.DefaultUnit))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMQTTTopic, "fireplace")
	v.SetDefault(KeyHTTPPort, "8080")
}

// BindFlags registers the command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("ip", "", "fireplace IP address (overrides "+KeyFireplaceIP+")")
	fs.String("unit", "", "display unit, C or F")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("journal", "", "SQLite journal path; empty disables the journal")
	fs.String("mqtt-url", "", "MQTT broker URL, e.g. mqtt://localhost:1883")
	fs.String("mqtt-topic", "", "MQTT topic prefix")
	fs.String("http-port", "", "HTTP port for serve")
}

// Load resolves the configuration, searching for FileName from dir upwards.
// An empty dir means the working directory. fs may be nil. A config file that
// cannot be parsed is reported in FileErr and the remaining layers still apply.
func Load(dir string, fs *pflag.FlagSet) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		dir = wd
	}

	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	if path, ok := FindFile(dir); ok {
		cfg.File = path
		if err := mergeFile(v, path); err != nil {
			cfg.FileErr = err
		}
	}

	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg.FireplaceIP = strings.TrimSpace(v.GetString(KeyFireplaceIP))
	cfg.Unit = display.DefaultUnit
	if u, ok := display.ParseUnit(v.GetString(KeyTemperatureUnit)); ok {
		cfg.Unit = u
	}
	cfg.LogLevel = v.GetString(KeyLogLevel)
	cfg.JournalPath = v.GetString(KeyJournalPath)
	cfg.MQTT = MQTT{
		URL:      v.GetString(KeyMQTTURL),
		Topic:    strings.Trim(v.GetString(KeyMQTTTopic), "/"),
		Username: v.GetString(KeyMQTTUsername),
		Password: v.GetString(KeyMQTTPassword),
	}
	cfg.HTTPPort = v.GetString(KeyHTTPPort)
	cfg.JWTSecret = v.GetString(KeyJWTSecret)
	cfg.APIKeyHash = v.GetString(KeyAPIKeyHash)
	return cfg, nil
}

// mergeFile layers the KEY=VALUE pairs of path over the defaults. Blank values are
// skipped so they do not mask a default.
func mergeFile(v *viper.Viper, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	file := make(map[string]any, len(values))
	for k, val := range values {
		if strings.TrimSpace(val) != "" {
			file[k] = strings.TrimSpace(val)
		}
	}
	if err := v.MergeConfigMap(file); err != nil {
		return fmt.Errorf("merge %s: %w", path, err)
	}
	return nil
}

// FindFile looks for FileName in dir and each parent up to the filesystem root.
func FindFile(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, FileName)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ResolveAddress picks the fireplace address: the configured FIREPLACE_IP (flag,
// environment or file) wins, otherwise the last positional argument is used. The
// result is validated before any network activity.
func (c *Config) ResolveAddress(args []string) (string, error) {
	ip := c.FireplaceIP
	if ip == "" && len(args) > 0 {
		ip = strings.TrimSpace(args[len(args)-1])
	}
	if err := ValidateIP(ip); err != nil {
		return "", err
	}
	return ip, nil
}

var ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// ValidateIP accepts dotted-decimal IPv4 addresses only.
func ValidateIP(ip string) error {
	if !ipv4Pattern.MatchString(ip) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, ip)
	}
	for _, part := range strings.Split(ip, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, ip)
		}
	}
	return nil
}
