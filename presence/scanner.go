package presence

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
)

// Scanner reports the device addresses currently visible. ok is false when
// scanning is not possible at all, as opposed to seeing nobody.
type Scanner interface {
	Scan(ctx context.Context) (macs map[string]struct{}, ok bool)
}

// ARPScanner shells out to arp-scan on the local network.
type ARPScanner struct {
	Command string
	Args    []string
}

func NewARPScanner() *ARPScanner {
	return &ARPScanner{Command: "arp-scan", Args: []string{"--localnet"}}
}

func (s *ARPScanner) Scan(ctx context.Context) (map[string]struct{}, bool) {
	out, err := exec.CommandContext(ctx, s.Command, s.Args...).Output()
	if err != nil {
		return nil, false
	}
	return ParseARPScan(string(out)), true
}

// ParseARPScan keeps the second column of every line when it looks like a
// MAC address, lower-cased.
func ParseARPScan(output string) map[string]struct{} {
	macs := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && strings.Contains(fields[1], ":") {
			macs[strings.ToLower(fields[1])] = struct{}{}
		}
	}
	return macs
}
