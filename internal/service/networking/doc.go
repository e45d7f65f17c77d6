// Package networking switches a device from classic Debian networking to
// systemd-networkd with three interfaces: eth0 (wired), wlan0 (wifi client)
// and ap0 (access point), plus the services that toggle between client and
// access point mode.
package networking
