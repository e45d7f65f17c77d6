// Package command runs external programs for provisioning steps.
//
// Runner is the single seam between the orchestration code and the host:
// Exec runs real processes and logs every invocation, while the commandtest
// package provides a recording fake with scripted outputs.
package command
