package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another player already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	activateCommand = "activate"
	dialTimeout     = time.Second
	readTimeout     = time.Second
)

// InstanceGuard holds the single-instance lock. While served it also
// accepts activation requests from later launches.
type InstanceGuard struct {
	listener net.Listener
	address  string

	serveOnce sync.Once
	served    chan struct{}
}

// AcquireSingleInstance binds the deterministic localhost port of appName.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Serve handles activation requests in the background, calling onActivate
// once per request. Only the first call has an effect.
func (guard *InstanceGuard) Serve(onActivate func()) {
	if guard == nil || guard.listener == nil {
		return
	}
	guard.serveOnce.Do(func() {
		guard.served = make(chan struct{})
		go guard.acceptLoop(onActivate)
	})
}

// Release frees the lock and waits for the activation loop to exit.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	guard.serveOnce.Do(func() {})
	if guard.served != nil {
		<-guard.served
	}
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// ActivateRunning asks the player holding appName's lock to show itself.
func ActivateRunning(appName string) error {
	return activate(instanceAddress(appName))
}

func activate(address string) error {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial running instance: %w", err)
	}
	defer conn.Close()
	if _, err := fmt.Fprintln(conn, activateCommand); err != nil {
		return fmt.Errorf("send activation: %w", err)
	}
	return nil
}

func (guard *InstanceGuard) acceptLoop(onActivate func()) {
	defer close(guard.served)
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		if readCommand(conn) == activateCommand && onActivate != nil {
			onActivate()
		}
	}
}

func readCommand(conn net.Conn) string {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return ""
	}
	return scanner.Text()
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
