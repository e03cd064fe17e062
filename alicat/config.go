package alicat

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/go-alicat/transport"
)

// Config describes one device endpoint in declarative form, suitable for
// loading from a YAML file. Zero values mean "use the default".
type Config struct {
	// Address is the endpoint, a serial device path or a host:port pair.
	Address string `yaml:"address"`
	// Unit is the device's unit identifier, a single letter A-Z.
	Unit string `yaml:"unit"`

	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`

	// TimeoutMs overrides the connect/exchange timeout, in milliseconds.
	TimeoutMs int `yaml:"timeout_ms"`
}

// LoadConfig reads a device configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if cfg.Address == "" {
		return nil, errors.Errorf("config %s: address is required", path)
	}

	return cfg, nil
}

// Options converts the configuration into session options for NewMeter,
// NewController and their shared variants.
func (cfg *Config) Options() ([]Option, error) {
	var opts []Option

	if cfg.Unit != "" {
		opts = append(opts, WithUnit(cfg.Unit))
	}
	if cfg.BaudRate != 0 {
		opts = append(opts, WithBaudRate(cfg.BaudRate))
	}
	if cfg.DataBits != 0 {
		opts = append(opts, WithDataBits(cfg.DataBits))
	}
	if cfg.StopBits != 0 {
		opts = append(opts, WithStopBits(cfg.StopBits))
	}
	if cfg.Parity != "" {
		parity, err := parseParity(cfg.Parity)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithParity(parity))
	}
	if cfg.TimeoutMs != 0 {
		if cfg.TimeoutMs < 0 {
			return nil, errors.Errorf("config: invalid timeout_ms: %d", cfg.TimeoutMs)
		}
		opts = append(opts, WithTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond))
	}

	return opts, nil
}

func parseParity(name string) (transport.Parity, error) {
	switch name {
	case "none":
		return transport.ParityNone, nil
	case "odd":
		return transport.ParityOdd, nil
	case "even":
		return transport.ParityEven, nil
	default:
		return 0, errors.Errorf("config: invalid parity %q, want none, odd or even", name)
	}
}
