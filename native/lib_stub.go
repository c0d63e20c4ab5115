//go:build !linux || !cgo

package native

import (
	"fmt"

	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
)

// The DCGM host engine library only ships for linux, and reaching it
// needs cgo. Everywhere else Load fails permanently.
func openLibrary(path string) (Interface, error) {
	return nil, errors.LibraryLoad(path, fmt.Errorf("dcgm bindings require linux and cgo"))
}
