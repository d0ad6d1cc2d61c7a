// Package config loads the YAML settings used by the demo programs.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/flavioheleno/pixelpanel/wifi"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultFile holds the built-in settings, also written by Load when the
// config file is missing.
//
//go:embed default.yaml
var DefaultFile []byte

// Supported drivers.
const (
	DriverILI9341       = "ili9341"
	DriverSSD1306       = "ssd1306"
	DriverPeriphSSD1306 = "periph-ssd1306"
)

// Supported fonts.
const (
	FontBuiltin    = "builtin"
	FontBasic      = "basicfont"
	FontBitmapFont = "bitmapfont"
)

// Config is the content of a config file.
type Config struct {
	Driver   string  `yaml:"driver"`
	LogLevel string  `yaml:"log_level"`
	Font     string  `yaml:"font"`
	Display  Display `yaml:"display"`
	WiFi     *WiFi   `yaml:"wifi,omitempty"`
}

// Display selects the bus, pins and geometry of the panel.
type Display struct {
	SPI      string `yaml:"spi"`
	SPIHz    int64  `yaml:"spi_hz"`
	I2C      string `yaml:"i2c"`
	Addr     uint16 `yaml:"addr"`
	DC       string `yaml:"dc"`
	CS       string `yaml:"cs"`
	RST      string `yaml:"rst"`
	Rotation int    `yaml:"rotation"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
}

// WiFi describes the network joined by the wifi demo. The section is
// optional.
type WiFi struct {
	SSID      string        `yaml:"ssid"`
	Password  string        `yaml:"password"`
	Auth      string        `yaml:"auth"` // wpa2, wpa3 or open (default: wpa2)
	Country   string        `yaml:"country"`
	Timeout   time.Duration `yaml:"timeout"`
	Interface string        `yaml:"interface"`
	LED       string        `yaml:"led"`
}

// Default returns the built-in settings.
func Default() (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(DefaultFile, c); err != nil {
		return nil, fmt.Errorf("config: default file: %w", err)
	}
	return c, nil
}

// Load reads path over the defaults. A missing file is created with the
// default settings.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logrus.Infof("Create default config file %s", path)
		return c, c.Save(path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	logrus.Debugf("Save config file: %s", path)
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0660); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverILI9341, DriverSSD1306, DriverPeriphSSD1306:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Font {
	case FontBuiltin, FontBasic, FontBitmapFont:
	default:
		return fmt.Errorf("unknown font %q", c.Font)
	}
	d := c.Display
	if d.Rotation < 0 || d.Rotation > 3 {
		return fmt.Errorf("rotation %d out of range [0, 3]", d.Rotation)
	}
	if d.Width < 0 || d.Height < 0 {
		return fmt.Errorf("negative panel size %dx%d", d.Width, d.Height)
	}
	if d.SPIHz < 0 {
		return fmt.Errorf("negative SPI frequency %d", d.SPIHz)
	}
	if c.WiFi != nil {
		if _, err := c.WiFi.Config(); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the parsed log level, or info if it is invalid.
func (c *Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}

// Config converts the section into the connection settings used by
// wifi.Manager.
func (w *WiFi) Config() (wifi.Config, error) {
	cfg := wifi.Config{
		SSID:     w.SSID,
		Password: w.Password,
		Country:  w.Country,
		Timeout:  w.Timeout,
	}
	switch w.Auth {
	case "", "wpa2":
		cfg.Auth = wifi.WPA2PSK
	case "wpa3":
		cfg.Auth = wifi.WPA3SAE
	case "open":
		cfg.Auth = wifi.Open
	default:
		return cfg, fmt.Errorf("unknown wifi auth %q", w.Auth)
	}
	if w.SSID == "" {
		return cfg, fmt.Errorf("wifi section without ssid")
	}
	return cfg, nil
}
