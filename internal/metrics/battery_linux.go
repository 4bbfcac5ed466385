package metrics

import "context"

func readBattery(_ context.Context) (BatteryInfo, error) {
	return readSysfsBattery(PowerSupplyRoot)
}
