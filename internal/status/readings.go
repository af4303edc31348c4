package status

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat is the datetime format used when no argument is given.
const DefaultDateFormat = " %a %T "

func datetime(_ context.Context, e env, arg string) (string, error) {
	if arg == "" {
		arg = DefaultDateFormat
	}
	return strftime.Format(arg, e.now()), nil
}

var batterySymbols = map[string]string{
	"Charging":     "+",
	"Discharging":  "-",
	"Full":         "o",
	"Not charging": "o",
}

func batteryState(_ context.Context, e env, arg string) (string, error) {
	data, err := os.ReadFile(filepath.Join(e.sys, "class", "power_supply", arg, "status"))
	if err != nil {
		return "", err
	}
	if sym, ok := batterySymbols[strings.TrimSpace(string(data))]; ok {
		return sym, nil
	}
	return "?", nil
}

func batteryPerc(_ context.Context, e env, arg string) (string, error) {
	data, err := os.ReadFile(filepath.Join(e.sys, "class", "power_supply", arg, "capacity"))
	if err != nil {
		return "", err
	}
	perc, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return "", err
	}
	return strconv.Itoa(perc), nil
}

// wifiPerc reports the link quality of interface arg as a percentage of
// the 70-step scale used by /proc/net/wireless.
func wifiPerc(_ context.Context, e env, arg string) (string, error) {
	state, err := os.ReadFile(filepath.Join(e.sys, "class", "net", arg, "operstate"))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(state)) != "up" {
		return "", nil
	}

	f, err := os.Open(filepath.Join(e.proc, "net", "wireless"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		name, rest, ok := strings.Cut(line, ":")
		if !ok || name != arg {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			return "", fmt.Errorf("malformed wireless line %q", line)
		}
		quality, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "."), 64)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(quality * 100 / 70)), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("interface %s not in wireless table", arg)
}

// runCommand runs arg with /bin/sh and returns the first line of output.
func runCommand(ctx context.Context, _ env, arg string) (string, error) {
	if arg == "" {
		return "", errors.New("empty command")
	}
	out, err := exec.CommandContext(ctx, "/bin/sh", "-c", arg).Output()
	if err != nil {
		return "", err
	}
	line, _, _ := bytes.Cut(out, []byte("\n"))
	return string(line), nil
}
