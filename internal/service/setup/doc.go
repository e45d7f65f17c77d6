// Package setup provisions a fresh device: system users and groups, base
// packages, static configuration files, optional I2C and real-time clock
// hardware, the PeachCloud apt repository and microservices, and networking.
//
// Every step is idempotent so a failed run can be repeated after fixing its
// cause. Applied steps are not rolled back. The hardware configuration log is
// written last and only when every previous step succeeded.
package setup
