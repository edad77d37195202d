package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kilianp07/docksched/core/edit"
)

// ScheduleConfig holds the planning parameters.
type ScheduleConfig struct {
	DefaultDurationMinutes int      `json:"default_duration_minutes"`
	RefreshIntervalSeconds int      `json:"refresh_interval_seconds"`
	SweepIntervalSeconds   int      `json:"sweep_interval_seconds"`
	Timezone               string   `json:"timezone"`
	OpenTime               string   `json:"open_time"`
	CloseTime              string   `json:"close_time"`
	BlockedGates           []string `json:"blocked_gates"`
	// GatesFile optionally replaces the built-in gate table.
	GatesFile string `json:"gates_file"`
}

func (c *ScheduleConfig) SetDefaults() {
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = 90
	}
	if c.RefreshIntervalSeconds <= 0 {
		c.RefreshIntervalSeconds = 30
	}
	if c.SweepIntervalSeconds <= 0 {
		c.SweepIntervalSeconds = 10
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Warsaw"
	}
	if c.OpenTime == "" {
		c.OpenTime = "06:30"
	}
	if c.CloseTime == "" {
		c.CloseTime = "20:30"
	}
}

func (c ScheduleConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Window parses the operating hours.
func (c ScheduleConfig) Window() (edit.Window, error) {
	return edit.ParseWindow(c.OpenTime, c.CloseTime)
}

func (c ScheduleConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

func (c ScheduleConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
