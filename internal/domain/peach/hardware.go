package peach

import (
	"errors"
	"fmt"
	"strings"
)

// RtcModel identifies a supported real-time-clock module.
type RtcModel int

const (
	// DS1307 is the Maxim DS1307 real-time clock.
	DS1307 RtcModel = iota + 1
	// DS3231 is the Maxim DS3231 temperature-compensated real-time clock.
	DS3231
)

// errUnknownRtcModel is returned when a value does not name a supported model.
var errUnknownRtcModel = errors.New("unknown rtc model")

// RtcModels lists every supported model in display order.
func RtcModels() []RtcModel {
	return []RtcModel{DS1307, DS3231}
}

// ParseRtcModel converts a case-insensitive model name into an RtcModel.
func ParseRtcModel(s string) (RtcModel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DS1307":
		return DS1307, nil
	case "DS3231":
		return DS3231, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected one of %s)", errUnknownRtcModel, s, rtcModelNames())
	}
}

// String returns the canonical model name.
func (m RtcModel) String() string {
	switch m {
	case DS1307:
		return "DS1307"
	case DS3231:
		return "DS3231"
	default:
		return fmt.Sprintf("RtcModel(%d)", int(m))
	}
}

// MarshalText encodes the model as its canonical name.
func (m RtcModel) MarshalText() ([]byte, error) {
	switch m {
	case DS1307, DS3231:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownRtcModel, int(m))
	}
}

// UnmarshalText decodes a model name.
func (m *RtcModel) UnmarshalText(text []byte) error {
	parsed, err := ParseRtcModel(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// HardwareConfig is the log of hardware options applied by the last successful setup run.
type HardwareConfig struct {
	// I2C reports whether the I2C bus was configured.
	I2C bool `json:"i2c"`
	// RTC is the real-time clock model selected, or nil when none was.
	RTC *RtcModel `json:"rtc"`
}

// NewHardwareConfig builds a HardwareConfig, copying the rtc value.
func NewHardwareConfig(i2c bool, rtc *RtcModel) *HardwareConfig {
	return &HardwareConfig{
		I2C: i2c,
		RTC: cloneRtc(rtc),
	}
}

// Clone returns a deep copy of the hardware config.
func (h *HardwareConfig) Clone() *HardwareConfig {
	if h == nil {
		return nil
	}

	return NewHardwareConfig(h.I2C, h.RTC)
}

func cloneRtc(rtc *RtcModel) *RtcModel {
	if rtc == nil {
		return nil
	}

	cloned := *rtc

	return &cloned
}

func rtcModelNames() string {
	models := RtcModels()
	names := make([]string, 0, len(models))

	for _, model := range models {
		names = append(names, model.String())
	}

	return strings.Join(names, ", ")
}
