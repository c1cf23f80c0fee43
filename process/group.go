package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

// signalGroup delivers sig to every process in the group led by pgid.
// A group that no longer exists is not an error.
func signalGroup(pgid int, sig unix.Signal) error {
	if pgid <= 0 {
		return nil
	}
	if err := unix.Kill(-pgid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		return err
	}
	return nil
}
