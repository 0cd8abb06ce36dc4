package platform

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestSingleInstance(t *testing.T) {
	name := "odyssey-test-" + t.Name()
	guard, err := AcquireSingleInstance(name)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}

	if _, err := AcquireSingleInstance(name); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second acquire err = %v, want ErrAlreadyRunning", err)
	}

	if err := guard.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := AcquireSingleInstance(name)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	_ = again.Release()
}

func TestActivateRunningReachesServe(t *testing.T) {
	name := "odyssey-test-" + t.Name()
	guard, err := AcquireSingleInstance(name)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}
	activations := make(chan struct{}, 4)
	guard.Serve(func() { activations <- struct{}{} })

	conn, err := net.Dial("tcp", guard.Address())
	if err != nil {
		t.Fatalf("dial guard: %v", err)
	}
	fmt.Fprintln(conn, "hello")
	conn.Close()

	if err := ActivateRunning(name); err != nil {
		t.Fatalf("ActivateRunning: %v", err)
	}
	select {
	case <-activations:
	case <-time.After(2 * time.Second):
		t.Fatal("activation not delivered")
	}
	select {
	case <-activations:
		t.Error("unknown command triggered an activation")
	case <-time.After(50 * time.Millisecond):
	}

	if err := guard.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := ActivateRunning(name); err == nil {
		t.Error("ActivateRunning succeeded with no running instance")
	}
}

func TestReleaseWithoutServe(t *testing.T) {
	guard, err := AcquireSingleInstance("odyssey-test-" + t.Name())
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	guard.Serve(func() { t.Error("served after release") })
}

func TestPortFromNameIsStable(t *testing.T) {
	first := portFromName("Odyssey")
	if first != portFromName("Odyssey") {
		t.Fatal("port not deterministic")
	}
	if first < 20000 || first > 39999 {
		t.Errorf("port %d out of range", first)
	}
}

func TestConfigDirEndsWithAppName(t *testing.T) {
	dir, err := ConfigDir("Odyssey")
	if err != nil {
		t.Skipf("no config dir: %v", err)
	}
	if len(dir) < len("Odyssey") || dir[len(dir)-len("Odyssey"):] != "Odyssey" {
		t.Errorf("ConfigDir = %q", dir)
	}
}
