// Package peach contains core domain types for provisioning a PeachCloud device.
//
// It defines the hardware configuration log (HardwareConfig, RtcModel), the
// Manifest reported to operators, and the closed set of error kinds every
// provisioning operation returns.
package peach
