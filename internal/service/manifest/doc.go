// Package manifest reports the installed PeachCloud packages together with
// the hardware configured by the last successful setup, as one line of JSON.
package manifest
