// +build windows

// TODO(mpl): Copyright in next CL.

package osutil

import (
	"log"
)

// RestartProcess does not restart the process on windows: it logs
// that restarting is not implemented and returns nil.
func RestartProcess() error {
	log.Print("RestartProcess not implemented on windows")
	return nil
}
