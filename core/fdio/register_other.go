//go:build !unix

package fdio

import "os"

// eventedFile always falls back to the worker pool on platforms without a
// readiness based poller for arbitrary descriptors.
func eventedFile(f File) (*os.File, error) {
	return nil, errUnsupported
}
