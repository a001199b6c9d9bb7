// Package config loads llscan session files.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"tinygo.org/x/linklayer"
	"tinygo.org/x/linklayer/sim"
)

// DefaultAdvertisements is the session length when the session file does
// not set one.
const DefaultAdvertisements = 100

var (
	ErrInvalidChannel    = errors.New("config: channel must be an advertising channel (37, 38 or 39)")
	ErrInvalidAdvertiser = errors.New("config: invalid advertiser")
)

// Config is a simulated scan session.
type Config struct {
	LogLevel string `yaml:"log_level" default:"info"`

	Scanner ScannerConfig `yaml:"scanner"`

	// Advertisements stops the session after this many advertisements
	// have been heard. Zero or a negative value runs until interrupted or
	// Duration elapses.
	Advertisements int           `yaml:"advertisements"`
	Duration       time.Duration `yaml:"duration" default:"10s"`
	CorruptEvery   int           `yaml:"corrupt_every" default:"0"`

	Advertisers []AdvertiserConfig `yaml:"advertisers"`
}

// ScannerConfig holds the scanner parameters.
type ScannerConfig struct {
	Type             string `yaml:"type" default:"active"`
	OwnAddressType   string `yaml:"own_address_type" default:"random"`
	FilterPolicy     string `yaml:"filter_policy" default:"accept-all"`
	Channel          uint8  `yaml:"channel" default:"39"`
	InitiatorAddress string `yaml:"initiator_address" default:"DE:DE:DE:DE:DE:DE"`
	DebugPins        bool   `yaml:"debug_pins" default:"false"`
}

// AdvertiserConfig describes one scripted advertiser. Data and
// ScanResponse are hex strings.
type AdvertiserConfig struct {
	Address      string `yaml:"address"`
	Random       bool   `yaml:"random"`
	PDU          string `yaml:"pdu" default:"ADV_IND"`
	Data         string `yaml:"data"`
	ScanResponse string `yaml:"scan_response"`
}

// DefaultConfig returns a configuration with all defaults applied and no
// advertisers.
func DefaultConfig() *Config {
	cfg := &Config{Advertisements: DefaultAdvertisements}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads and validates a session file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a session from YAML.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	defaults.SetDefaults(cfg)
	for i := range cfg.Advertisers {
		defaults.SetDefaults(&cfg.Advertisers[i])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := c.ScanParameters(); err != nil {
		return err
	}
	if c.Scanner.Channel < 37 || c.Scanner.Channel > 39 {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, c.Scanner.Channel)
	}
	if _, err := linklayer.ParseMAC(c.Scanner.InitiatorAddress); err != nil {
		return fmt.Errorf("initiator address %q: %w", c.Scanner.InitiatorAddress, err)
	}
	if _, err := c.Air(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ScanParameters converts the scanner section.
func (c *Config) ScanParameters() (linklayer.ScanParameters, error) {
	var p linklayer.ScanParameters
	var err error
	if p.Type, err = linklayer.ParseScanType(c.Scanner.Type); err != nil {
		return p, err
	}
	if p.OwnAddressType, err = linklayer.ParseAddressType(c.Scanner.OwnAddressType); err != nil {
		return p, err
	}
	if p.FilterPolicy, err = linklayer.ParseFilterPolicy(c.Scanner.FilterPolicy); err != nil {
		return p, err
	}
	return p, nil
}

// ScannerOptions returns the scanner options for this session.
func (c *Config) ScannerOptions(logger logrus.FieldLogger) []linklayer.Option {
	// Validated by Load.
	initiator, _ := linklayer.ParseMAC(c.Scanner.InitiatorAddress)
	return []linklayer.Option{
		linklayer.WithLogger(logger),
		linklayer.WithChannel(c.Scanner.Channel),
		linklayer.WithInitiatorAddress(initiator),
		linklayer.WithDebugPins(c.Scanner.DebugPins),
	}
}

// Air builds the scripted advertisers.
func (c *Config) Air() (*sim.Air, error) {
	air := &sim.Air{}
	for i, ac := range c.Advertisers {
		adv, err := ac.advertiser()
		if err != nil {
			return nil, fmt.Errorf("advertiser %d: %w", i, err)
		}
		air.Advertisers = append(air.Advertisers, adv)
	}
	return air, nil
}

func (ac AdvertiserConfig) advertiser() (sim.Advertiser, error) {
	addr, err := linklayer.ParseMAC(ac.Address)
	if err != nil {
		return sim.Advertiser{}, fmt.Errorf("%w: address %q", ErrInvalidAdvertiser, ac.Address)
	}
	typ, err := parsePDUType(ac.PDU)
	if err != nil {
		return sim.Advertiser{}, err
	}
	data, err := hex.DecodeString(ac.Data)
	if err != nil {
		return sim.Advertiser{}, fmt.Errorf("%w: data: %v", ErrInvalidAdvertiser, err)
	}
	rsp, err := hex.DecodeString(ac.ScanResponse)
	if err != nil {
		return sim.Advertiser{}, fmt.Errorf("%w: scan response: %v", ErrInvalidAdvertiser, err)
	}
	// Address plus data must fit the 6-bit length field.
	if 6+len(data) > 37 || 6+len(rsp) > 37 {
		return sim.Advertiser{}, fmt.Errorf("%w: payload longer than 31 bytes", ErrInvalidAdvertiser)
	}
	return sim.Advertiser{
		Address:      addr,
		Random:       ac.Random,
		Type:         typ,
		Data:         data,
		ScanResponse: rsp,
	}, nil
}

func parsePDUType(s string) (linklayer.PDUType, error) {
	for _, t := range []linklayer.PDUType{
		linklayer.PDUAdvInd,
		linklayer.PDUAdvNonconnInd,
		linklayer.PDUAdvScanInd,
		linklayer.PDUAdvDirectInd,
	} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: pdu %q", ErrInvalidAdvertiser, s)
}

// NewLogger creates a configured logger instance.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}
