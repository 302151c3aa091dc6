// Package lock guards export destinations against concurrent refdump runs.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// LockFileName is the lockfile created inside a guarded directory.
const LockFileName = ".refdump.lock"

// ErrLocked is returned when another live process holds the directory.
var ErrLocked = errors.New("output directory is locked")

// DirLock is an exclusive lockfile inside an output directory. It records
// the holder's PID so a crashed run's leftover lock can be detected and
// broken; locks whose holder is still alive are honored.
//
// RD-P4-F4-T1: Exclusive output directory lock
type DirLock struct {
	dir  string
	file string
	held bool
}

// New creates a lock for the given directory. The lock is not taken until
// Acquire or ForceAcquire is called.
func New(dir string) *DirLock {
	return &DirLock{
		dir:  dir,
		file: filepath.Join(dir, LockFileName),
	}
}

// Path returns the lockfile location.
func (l *DirLock) Path() string {
	return l.file
}

// IsHeld reports whether this instance currently holds the lock.
func (l *DirLock) IsHeld() bool {
	return l.held
}

// Acquire takes the lock. A leftover lockfile whose holder process is no
// longer alive is treated as stale and broken; a lockfile with a live
// holder fails with ErrLocked.
//
// RD-P4-F4-T2: Stale lock detection by PID liveness
func (l *DirLock) Acquire() error {
	if l.held {
		return nil
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("lock directory: %w", err)
	}

	if err := l.create(); err == nil {
		return nil
	} else if !os.IsExist(err) {
		return fmt.Errorf("create lockfile: %w", err)
	}

	pid, ok := l.holderPID()
	if ok && pidAlive(pid) {
		return fmt.Errorf("%w: held by pid %d", ErrLocked, pid)
	}
	if !ok {
		// Unreadable lockfile: assume a live holder rather than stomp it.
		return fmt.Errorf("%w: unreadable lockfile %s", ErrLocked, l.file)
	}

	// Holder is gone; break the stale lock and take it.
	if err := os.Remove(l.file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale lockfile: %w", err)
	}
	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: reclaimed concurrently", ErrLocked)
		}
		return fmt.Errorf("create lockfile: %w", err)
	}
	return nil
}

// ForceAcquire removes any existing lockfile, live holder or not, and
// takes the lock.
func (l *DirLock) ForceAcquire() error {
	if l.held {
		return nil
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("lock directory: %w", err)
	}
	if err := os.Remove(l.file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lockfile: %w", err)
	}
	if err := l.create(); err != nil {
		return fmt.Errorf("create lockfile: %w", err)
	}
	return nil
}

// Release removes the lockfile. Releasing a lock that is not held is a
// no-op.
func (l *DirLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lockfile: %w", err)
	}
	return nil
}

// create writes the lockfile exclusively, stamping holder PID and time.
func (l *DirLock) create() error {
	f, err := os.OpenFile(l.file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	_, werr := fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}
	l.held = true
	return nil
}

// holderPID reads the PID recorded in the lockfile.
func (l *DirLock) holderPID() (int, bool) {
	raw, err := os.ReadFile(l.file)
	if err != nil {
		return 0, false
	}
	line, _, _ := strings.Cut(string(raw), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// pidAlive reports whether a process with the given PID exists. Signal 0
// probes existence without delivering anything; EPERM still means the
// process is there.
func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// WithLock acquires the directory lock, runs fn, and releases the lock
// even when fn fails.
//
// RD-P4-F4-T3: Crash-safe lock scope
func WithLock(dir string, force bool, fn func() error) error {
	l := New(dir)

	var err error
	if force {
		err = l.ForceAcquire()
	} else {
		err = l.Acquire()
	}
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := l.Release(); releaseErr != nil {
			// The next run will see a stale lock and break it.
			_ = releaseErr
		}
	}()

	return fn()
}
