package metrics

import (
	"context"
	"os/exec"
)

func readBattery(ctx context.Context) (BatteryInfo, error) {
	out, err := exec.CommandContext(ctx, "pmset", "-g", "batt").Output()
	if err != nil {
		return BatteryInfo{}, err
	}
	return parsePmset(string(out)), nil
}
