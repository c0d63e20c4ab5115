package dcgm

import (
	"fmt"
	"math/bits"

	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
)

// PathLevel is the raw bit-packed topology classification between two
// devices. Two independent planes are packed into one value: the low
// byte carries the PCIe topology class, and any bits above the low byte
// select an NVLink version class. Values mirror dcmGpuTopologyLevel_t.
type PathLevel uint32

// PCIeClass is the PCIe plane of a PathLevel.
type PCIeClass uint32

const (
	PCIeUninitialized PCIeClass = 0x00
	PCIeBoard         PCIeClass = 0x01 // same board (PSB)
	PCIeSingleSwitch  PCIeClass = 0x02 // single PCIe switch (PIX)
	PCIeMultiSwitch   PCIeClass = 0x04 // multiple PCIe switches (PXB)
	PCIeHostBridge    PCIeClass = 0x08 // same host bridge (PHB)
	PCIeNUMANode      PCIeClass = 0x10 // same NUMA node (NODE)
	PCIeSystem        PCIeClass = 0x20 // across NUMA nodes (SYS)
)

// String returns the nvidia-smi style label for the class.
func (c PCIeClass) String() string {
	switch c {
	case PCIeUninitialized:
		return "N/A"
	case PCIeBoard:
		return "PSB"
	case PCIeSingleSwitch:
		return "PIX"
	case PCIeMultiSwitch:
		return "PXB"
	case PCIeHostBridge:
		return "PHB"
	case PCIeNUMANode:
		return "NODE"
	case PCIeSystem:
		return "SYS"
	default:
		return "ERR"
	}
}

// NVLinkClass is the NVLink plane of a PathLevel. Each class occupies
// one bit above the low byte; the value is the full shifted bit, not a
// small integer.
type NVLinkClass uint32

// String returns the nvidia-smi style label (NV1..NV18) for the class,
// or "ERR" when no single NVLink bit is set.
func (c NVLinkClass) String() string {
	if c&0xff != 0 || bits.OnesCount32(uint32(c)) != 1 {
		return "ERR"
	}
	n := bits.TrailingZeros32(uint32(c)) - 7
	if n < 1 || n > 18 {
		return "ERR"
	}
	return fmt.Sprintf("NV%d", n)
}

// PCIe decodes the PCIe plane of the path.
func (p PathLevel) PCIe() PCIeClass {
	return PCIeClass(p & 0xff)
}

// NVLink decodes the NVLink plane of the path. The result is zero when
// the peers are not NVLink-connected, which stringifies to "ERR".
func (p PathLevel) NVLink() NVLinkClass {
	return NVLinkClass(p &^ 0xff)
}

// MaxBitmaskGPUs is the highest GPU id representable in the 64-bit
// membership bitmask used by topology selection. This is a permanent
// constraint of the encoding, not a tunable limit.
const MaxBitmaskGPUs = 63

// GpuBitmask encodes a set of GPU ids as a 64-bit membership bitmask.
// Any id above MaxBitmaskGPUs is rejected.
func GpuBitmask(gpuIDs []uint) (uint64, error) {
	var mask uint64
	for _, id := range gpuIDs {
		if id > MaxBitmaskGPUs {
			return 0, errors.OutOfRange(errors.PhaseTopology,
				fmt.Sprintf("gpu id %d exceeds bitmask limit %d", id, MaxBitmaskGPUs))
		}
		mask |= 1 << id
	}
	return mask, nil
}

// GpuIDsFromBitmask decodes a membership bitmask back into GPU ids,
// scanning set bits low to high.
func GpuIDsFromBitmask(mask uint64) []uint {
	ids := make([]uint, 0, bits.OnesCount64(mask))
	for id := uint(0); mask != 0; id++ {
		if mask&1 == 1 {
			ids = append(ids, id)
		}
		mask >>= 1
	}
	return ids
}
