// Package config defines the settings injected into every provisioning
// component and provides helpers to load, validate and save them in YAML.
//
// A missing settings file is not an error: Default values describe a stock
// PeachCloud device, and a present file overlays them.
package config
