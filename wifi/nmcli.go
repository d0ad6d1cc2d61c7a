package wifi

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// runCommand executes a program with stdin attached and returns its
// combined output. It is replaced in tests.
var runCommand = func(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	return cmd.CombinedOutput()
}

// wirelessStats is read for the signal level.
var wirelessStats = "/proc/net/wireless"

// NMCLI is a Radio backed by NetworkManager's nmcli tool.
type NMCLI struct {
	// Interface is the wireless interface name (default: wlan0).
	Interface string
}

var _ Radio = (*NMCLI)(nil)

func (n *NMCLI) ifname() string {
	if n.Interface == "" {
		return "wlan0"
	}
	return n.Interface
}

func (n *NMCLI) nmcli(ctx context.Context, args ...string) ([]byte, error) {
	return n.nmcliAsk(ctx, "", args...)
}

// nmcliAsk runs nmcli in --ask mode when secret is set and answers its
// prompt on stdin, so the secret never appears in the process list.
func (n *NMCLI) nmcliAsk(ctx context.Context, secret string, args ...string) ([]byte, error) {
	var stdin io.Reader
	argv := args
	if secret != "" {
		stdin = strings.NewReader(secret + "\n")
		argv = append([]string{"--ask"}, args...)
	}
	out, err := runCommand(ctx, stdin, "nmcli", argv...)
	if err != nil {
		return out, fmt.Errorf("nmcli %s: %w: %s", args[0], err, bytes.TrimSpace(out))
	}
	return out, nil
}

// Init turns the radio on. The regulatory domain is set with iw when it
// is available.
func (n *NMCLI) Init(country string) error {
	ctx := context.Background()
	if _, err := n.nmcli(ctx, "radio", "wifi", "on"); err != nil {
		return err
	}
	if country != "" {
		if _, err := exec.LookPath("iw"); err == nil {
			if out, err := runCommand(ctx, nil, "iw", "reg", "set", country); err != nil {
				return fmt.Errorf("iw reg set %s: %w: %s", country, err, bytes.TrimSpace(out))
			}
		}
	}
	return nil
}

// Deinit turns the radio off.
func (n *NMCLI) Deinit() error {
	_, err := n.nmcli(context.Background(), "radio", "wifi", "off")
	return err
}

// Join connects the interface to ssid. The password is answered to nmcli's
// prompt on stdin rather than passed as an argument.
func (n *NMCLI) Join(ctx context.Context, ssid, password string, auth AuthMode) error {
	if auth == Open {
		password = ""
	}
	out, err := n.nmcliAsk(ctx, password, "device", "wifi", "connect", ssid, "ifname", n.ifname())
	if err != nil {
		if bytes.Contains(out, []byte("No network with SSID")) {
			return fmt.Errorf("%w: %s", ErrNoSSID, ssid)
		}
		return err
	}
	return nil
}

// Leave disconnects the interface.
func (n *NMCLI) Leave() error {
	_, err := n.nmcli(context.Background(), "device", "disconnect", n.ifname())
	return err
}

// IP returns the first IPv4 address of the interface.
func (n *NMCLI) IP() (netip.Addr, error) {
	ifi, err := net.InterfaceByName(n.ifname())
	if err != nil {
		return netip.Addr{}, err
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip, ok := netip.AddrFromSlice(ipn.IP); ok && ip.Unmap().Is4() {
			return ip.Unmap(), nil
		}
	}
	return netip.Addr{}, fmt.Errorf("wifi: %s has no IPv4 address", n.ifname())
}

// RSSI returns the signal level reported by the kernel, in dBm.
func (n *NMCLI) RSSI() (int, error) {
	f, err := os.Open(wirelessStats)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return parseWireless(f, n.ifname())
}

// parseWireless extracts the signal level of ifname from the
// /proc/net/wireless table.
func parseWireless(r io.Reader, ifname string) (int, error) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 4 || strings.TrimSuffix(fields[0], ":") != ifname {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			return 0, fmt.Errorf("wifi: bad signal level %q", fields[3])
		}
		return int(level), nil
	}
	if err := s.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("wifi: %s not listed in %s", ifname, wirelessStats)
}

// MAC returns the hardware address of the interface.
func (n *NMCLI) MAC() (net.HardwareAddr, error) {
	ifi, err := net.InterfaceByName(n.ifname())
	if err != nil {
		return nil, err
	}
	return ifi.HardwareAddr, nil
}

// Poll does nothing; NetworkManager runs its own event loop.
func (n *NMCLI) Poll() error {
	return nil
}
