package procmaps

import (
	"fmt"
	"os"

	"github.com/targodan/go-errors"
)

const procPath = "/proc"

// ParseProcess reads /proc/<pid>/maps of a live process and returns
// its address space.
func ParseProcess(pid int) (*AddressSpace, error) {
	mapsPath := fmt.Sprintf("%s/%d/maps", procPath, pid)
	f, err := os.Open(mapsPath)
	if os.IsNotExist(err) {
		return nil, errors.Newf("process %d does not exist", pid)
	}
	if os.IsPermission(err) {
		return nil, errors.Newf("insufficient permissions to read maps of process %d", pid)
	}
	if err != nil {
		return nil, errors.Newf("could not open %s, reason: %w", mapsPath, err)
	}
	defer f.Close()

	return Parse(f)
}
