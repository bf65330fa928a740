//go:build freebsd

package shm

import "testing"

func skipWithoutShm(t *testing.T) {}

func TestObjectPath(t *testing.T) {
	if got := objectPath("MumbleLink.1001"); got != "/MumbleLink.1001" {
		t.Fatalf("objectPath = %q", got)
	}
	if got := objectPath("/MumbleLink.1001"); got != "/MumbleLink.1001" {
		t.Fatalf("objectPath = %q", got)
	}
}
