package feed

import (
	"fmt"

	"github.com/nerrad567/tartan-home-core/internal/house"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/config"
)

// SettingsFromConfig converts a configured house into initial Settings.
func SettingsFromConfig(hc config.HouseConfig) (house.Settings, error) {
	s := house.DefaultSettings()
	s.LockPasscode = hc.LockPasscode
	s.AlarmPasscode = hc.AlarmPasscode
	if hc.TargetTemp != 0 {
		s.TargetTemp = hc.TargetTemp
		s.CurrentTemp = hc.TargetTemp
	}
	if hc.AlarmDelay > 0 {
		s.AlarmDelay = hc.AlarmDelay
	}

	if hc.NightStart != "" {
		t, err := house.ParseTimeOfDay(hc.NightStart)
		if err != nil {
			return house.Settings{}, fmt.Errorf("house %s night_start: %w", hc.Name, err)
		}
		s.NightStart = t
	}
	if hc.NightEnd != "" {
		t, err := house.ParseTimeOfDay(hc.NightEnd)
		if err != nil {
			return house.Settings{}, fmt.Errorf("house %s night_end: %w", hc.Name, err)
		}
		s.NightEnd = t
	}
	return s, nil
}

// ConfigureHouses records settings for every configured house.
func ConfigureHouses(reg *house.Registry, houses []config.HouseConfig) error {
	for _, hc := range houses {
		s, err := SettingsFromConfig(hc)
		if err != nil {
			return err
		}
		if err := reg.Configure(hc.Name, s); err != nil {
			return fmt.Errorf("configuring house %s: %w", hc.Name, err)
		}
	}
	return nil
}
