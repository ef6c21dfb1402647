package calltrace

import (
	"os"
	"strings"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes the environment variables read by LoadConfig. Nested
// keys are separated by a double underscore, e.g.
// CALLTRACE_SINK_BREAKER__FAILURE_THRESHOLD.
const EnvPrefix = "CALLTRACE_"

// Config controls the engine.
type Config struct {
	// Enabled turns interception on. When false Wrap returns every object
	// unchanged.
	Enabled bool `koanf:"enabled"`
	// ValueFormat selects how arguments and returned values are handed to the
	// sink: "fmt" passes them as is, "json" passes their JSON encoding and
	// "dump" additionally asks a Dumper sink to dump composite values.
	ValueFormat string `koanf:"value_format" validate:"oneof=fmt json dump"`
	// FailureReportsPerSecond bounds how often sink failures are reported on
	// the diagnostic logger. Zero disables the reports.
	FailureReportsPerSecond float64 `koanf:"failure_reports_per_second" validate:"gte=0"`

	SinkBreaker BreakerConfig `koanf:"sink_breaker"`
}

// BreakerConfig controls the circuit breaker around the sink.
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		ValueFormat:             ValueFormatFmt,
		FailureReportsPerSecond: 1,
		SinkBreaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
	}
}

// LoadConfig layers DefaultConfig, the YAML file at path (skipped when path
// is empty or does not exist) and CALLTRACE_* environment variables, in that
// order of increasing priority, and validates the result.
func LoadConfig(path string) (Config, error) {
	const op errors.Op = "calltrace.LoadConfig"
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, errors.New(op).Err(err).Msg(errMsgConfigLoad)
	}

	if path != emptyString {
		if _, err := os.Stat(path); err == nil {
			if err = k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, errors.New(op).Err(err).Msg(errMsgConfigLoad)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, errors.New(op).Err(err).Msg(errMsgConfigLoad)
	}

	var cfg Config
	if err := k.Unmarshal(emptyString, &cfg); err != nil {
		return Config{}, errors.New(op).Err(err).Msg(errMsgConfigLoad)
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps CALLTRACE_SINK_BREAKER__ENABLED to sink_breaker.enabled.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
