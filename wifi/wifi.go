// Package wifi manages a station-mode wireless connection.
//
// The Manager owns the connection state machine and reports transitions to
// a single status handler; the radio itself is reached through the Radio
// interface. NMCLI implements Radio for Linux hosts running NetworkManager.
package wifi

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/flavioheleno/pixelpanel"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// DefaultTimeout bounds Connect when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// DefaultCountry is the regulatory domain used when none is given.
const DefaultCountry = "GB"

// ErrNoSSID is returned by a Radio when the requested network is not in range.
var ErrNoSSID = errors.New("wifi: no network with that SSID")

// Status is the connection state.
type Status uint8

// Connection states.
const (
	Disconnected Status = iota
	Connecting
	Connected
	ConnectionFailed
	NoSSIDAvailable
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ConnectionFailed:
		return "connection failed"
	case NoSSIDAvailable:
		return "no SSID available"
	default:
		return "unknown"
	}
}

// AuthMode selects the security of the network.
type AuthMode uint8

// Authentication modes.
const (
	WPA2PSK AuthMode = iota
	WPA3SAE
	Open
)

// Config describes the network to join.
type Config struct {
	SSID     string
	Password string
	Auth     AuthMode
	Country  string        // Regulatory domain, used if the radio is not initialized yet
	Timeout  time.Duration // default: DefaultTimeout
}

// Radio is the wireless hardware as seen by the Manager.
type Radio interface {
	Init(country string) error
	Deinit() error
	// Join associates with a network. It returns ErrNoSSID when the network
	// is not visible and must give up when ctx is done.
	Join(ctx context.Context, ssid, password string, auth AuthMode) error
	Leave() error
	IP() (netip.Addr, error)
	RSSI() (int, error)
	MAC() (net.HardwareAddr, error)
	Poll() error
}

// Opts is the configuration for the Manager.
type Opts struct {
	// Optional status LED
	LED gpio.PinOut

	// Logger (default: logrus standard logger)
	Logger logrus.FieldLogger
}

// Manager drives a Radio and tracks the connection status.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	r   Radio
	led gpio.PinOut
	log logrus.FieldLogger

	initialized bool
	status      Status
	onStatus    func(Status)
}

// New returns a Manager for r. opts can be nil to use defaults.
func New(r Radio, opts *Opts) *Manager {
	if opts == nil {
		opts = &Opts{}
	}
	m := &Manager{
		r:   r,
		led: opts.LED,
		log: opts.Logger,
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	return m
}

// SetStatusHandler registers fn to be called synchronously on every status
// transition. Setting the current status again does not call it.
func (m *Manager) SetStatusHandler(fn func(Status)) {
	m.onStatus = fn
}

func (m *Manager) setStatus(s Status) {
	if s == m.status {
		return
	}
	m.log.WithField("from", m.status).Debugf("wifi: status %s", s)
	m.status = s
	if m.onStatus != nil {
		m.onStatus(s)
	}
}

// Init powers the radio up in station mode. It does nothing if the radio
// is already initialized.
func (m *Manager) Init(country string) error {
	if m.initialized {
		return nil
	}
	if country == "" {
		country = DefaultCountry
	}
	if err := m.r.Init(country); err != nil {
		m.setStatus(ConnectionFailed)
		return pixelpanel.Wrap(pixelpanel.HardwareFault, "wifi: init", err)
	}
	m.initialized = true
	m.setStatus(Disconnected)
	m.log.Infof("wifi initialized")
	return nil
}

// Deinit disconnects and powers the radio down.
func (m *Manager) Deinit() error {
	if !m.initialized {
		return nil
	}
	if err := m.Disconnect(); err != nil {
		return err
	}
	m.initialized = false
	if err := m.r.Deinit(); err != nil {
		return pixelpanel.Wrap(pixelpanel.HardwareFault, "wifi: deinit", err)
	}
	return nil
}

// Connect joins the network described by cfg, initializing the radio first
// if needed. It blocks until the radio reports success, failure or the
// timeout expires. Failures are not retried.
func (m *Manager) Connect(ctx context.Context, cfg Config) error {
	if cfg.SSID == "" {
		return pixelpanel.Errorf(pixelpanel.ConnectionFailed, "wifi: connect", "empty SSID")
	}
	if err := m.Init(cfg.Country); err != nil {
		return err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m.setStatus(Connecting)
	err := m.r.Join(ctx, cfg.SSID, cfg.Password, cfg.Auth)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoSSID):
		m.setStatus(NoSSIDAvailable)
		return pixelpanel.Wrap(pixelpanel.ConnectionFailed, "wifi: connect "+cfg.SSID, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		m.setStatus(ConnectionFailed)
		return pixelpanel.Wrap(pixelpanel.Timeout, "wifi: connect "+cfg.SSID, err)
	default:
		m.setStatus(ConnectionFailed)
		return pixelpanel.Wrap(pixelpanel.ConnectionFailed, "wifi: connect "+cfg.SSID, err)
	}
	m.setStatus(Connected)
	m.log.Infof("wifi connected: %s", m.IP())
	return nil
}

// Disconnect leaves the current network, if connected.
func (m *Manager) Disconnect() error {
	if !m.initialized || m.status != Connected {
		return nil
	}
	if err := m.r.Leave(); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "wifi: disconnect", err)
	}
	m.setStatus(Disconnected)
	return nil
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	return m.status
}

// IsConnected reports whether the station is associated.
func (m *Manager) IsConnected() bool {
	return m.status == Connected
}

// IsInitialized reports whether the radio is powered up.
func (m *Manager) IsInitialized() bool {
	return m.initialized
}

// IP returns the station address, or 0.0.0.0 when not connected.
func (m *Manager) IP() netip.Addr {
	if !m.IsConnected() {
		return netip.IPv4Unspecified()
	}
	ip, err := m.r.IP()
	if err != nil || !ip.IsValid() {
		return netip.IPv4Unspecified()
	}
	return ip
}

// RSSI returns the signal strength in dBm, or 0 when not connected.
func (m *Manager) RSSI() int {
	if !m.IsConnected() {
		return 0
	}
	rssi, err := m.r.RSSI()
	if err != nil {
		return 0
	}
	return rssi
}

var zeroMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}

// MAC returns the station hardware address, or all zeros before Init.
func (m *Manager) MAC() net.HardwareAddr {
	if !m.initialized {
		return zeroMAC
	}
	mac, err := m.r.MAC()
	if err != nil || len(mac) == 0 {
		return zeroMAC
	}
	return mac
}

// Poll lets the radio process pending events.
func (m *Manager) Poll() error {
	if !m.initialized {
		return nil
	}
	return m.r.Poll()
}

// SetLED drives the status LED, if one was configured.
func (m *Manager) SetLED(on bool) error {
	if m.led == nil {
		return nil
	}
	l := gpio.Low
	if on {
		l = gpio.High
	}
	if err := m.led.Out(l); err != nil {
		return pixelpanel.Wrap(pixelpanel.HardwareFault, "wifi: led", err)
	}
	return nil
}

// BlinkLED flashes the status LED count times. It returns early with the
// context error if ctx is done.
func (m *Manager) BlinkLED(ctx context.Context, on, off time.Duration, count int) error {
	for i := 0; i < count; i++ {
		if err := m.SetLED(true); err != nil {
			return err
		}
		if err := wait(ctx, on); err != nil {
			return err
		}
		if err := m.SetLED(false); err != nil {
			return err
		}
		if err := wait(ctx, off); err != nil {
			return err
		}
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
