package metrics

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PowerSupplyRoot is where Linux exposes batteries.
const PowerSupplyRoot = "/sys/class/power_supply"

// readSysfsBattery reads the first BAT* entry under root. No battery
// directory means Present=false, not an error.
func readSysfsBattery(root string) (BatteryInfo, error) {
	dir := ""
	for _, name := range []string{"BAT0", "BAT1"} {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			dir = candidate
			break
		}
	}
	if dir == "" {
		return BatteryInfo{}, nil
	}

	read := func(name string) (string, bool) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(string(data)), true
	}
	readFloat := func(name string) (float64, bool) {
		s, ok := read(name)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}

	b := BatteryInfo{Present: true, Health: 100}
	if capacity, ok := readFloat("capacity"); ok {
		b.Percent = ClampPercent(capacity)
	}

	b.Status = "Unknown"
	if s, ok := read("status"); ok && s != "" {
		b.Status = s
	}
	b.Charging = b.Status == "Charging"
	b.Plugged = b.Status == "Charging" || b.Status == "Full"

	b.Technology = "Unknown"
	if s, ok := read("technology"); ok && s != "" {
		b.Technology = s
	}
	b.Vendor = "Unknown"
	if s, ok := read("manufacturer"); ok && s != "" {
		b.Vendor = s
	}

	// Some firmware reports charge_* (µAh) instead of energy_* (µWh).
	now, okNow := readFloat("energy_now")
	rate, okRate := readFloat("power_now")
	if !okNow || !okRate {
		now, okNow = readFloat("charge_now")
		rate, okRate = readFloat("current_now")
	}
	if okNow && okRate && rate > 0 && !b.Charging {
		d := time.Duration(now / rate * float64(time.Hour))
		b.TimeRemaining = &d
	}

	full, okFull := readFloat("energy_full")
	design, okDesign := readFloat("energy_full_design")
	if !okFull || !okDesign {
		full, okFull = readFloat("charge_full")
		design, okDesign = readFloat("charge_full_design")
	}
	if okFull && okDesign && design > 0 {
		b.Health = ClampPercent(full / design * 100)
	}

	return b, nil
}

var (
	pmsetPercent   = regexp.MustCompile(`(\d+)%`)
	pmsetRemaining = regexp.MustCompile(`(\d+):(\d+) remaining`)
)

// parsePmset reads the output of `pmset -g batt`.
func parsePmset(out string) BatteryInfo {
	b := BatteryInfo{}
	acPower := strings.Contains(out, "AC Power")

	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "InternalBattery") {
			continue
		}
		b.Present = true
		b.Health = 100
		b.Technology = "Li-ion"
		b.Vendor = "Apple"

		if m := pmsetPercent.FindStringSubmatch(line); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				b.Percent = ClampPercent(pct)
			}
		}

		b.Charging = strings.Contains(line, "charging") && !strings.Contains(line, "discharging")
		b.Plugged = acPower || b.Charging
		switch {
		case b.Charging:
			b.Status = "Charging"
		case strings.Contains(line, "charged"):
			b.Status = "Full"
		default:
			b.Status = "Discharging"
		}

		if m := pmsetRemaining.FindStringSubmatch(line); m != nil {
			h, _ := strconv.Atoi(m[1])
			mins, _ := strconv.Atoi(m[2])
			d := time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute
			b.TimeRemaining = &d
		}
		break
	}
	return b
}
