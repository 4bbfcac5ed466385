//go:build !linux && !darwin

package metrics

import "context"

// Battery reporting is not implemented here; report no battery.
func readBattery(_ context.Context) (BatteryInfo, error) {
	return BatteryInfo{}, nil
}
