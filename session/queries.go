package session

import (
	"fmt"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
	"github.com/Shreyas-G-nutanix/go-dcgm/native"
)

// GetAllSupportedDevices returns the ids of all GPUs the host engine
// can manage.
func (s *Session) GetAllSupportedDevices() ([]uint, error) {
	if err := s.ensureOpen(errors.PhaseQuery); err != nil {
		return nil, err
	}
	buf := make([]uint32, native.MaxNumDevices)
	count, st := s.lib.GetAllSupportedDevices(s.handle, buf)
	if err := s.check(errors.PhaseQuery, "dcgmGetAllSupportedDevices", st); err != nil {
		return nil, err
	}
	return populatedPrefix(buf, count, "dcgmGetAllSupportedDevices")
}

// GetEntityGroupEntities returns the ids of all entities of the given
// category (GPUs, NvSwitches, NICs, vGPUs, ...).
func (s *Session) GetEntityGroupEntities(g dcgm.EntityGroup) ([]uint, error) {
	if err := s.ensureOpen(errors.PhaseQuery); err != nil {
		return nil, err
	}
	buf := make([]uint32, native.MaxNumDevices)
	count, st := s.lib.GetEntityGroupEntities(s.handle, g, buf)
	if err := s.check(errors.PhaseQuery, "dcgmGetEntityGroupEntities", st); err != nil {
		return nil, err
	}
	return populatedPrefix(buf, count, "dcgmGetEntityGroupEntities")
}

// GetDeviceAttributes fetches the static description of one GPU.
func (s *Session) GetDeviceAttributes(gpuID uint) (dcgm.DeviceAttributes, error) {
	if err := s.ensureOpen(errors.PhaseQuery); err != nil {
		return dcgm.DeviceAttributes{}, err
	}
	attrs, st := s.lib.GetDeviceAttributes(s.handle, uint32(gpuID))
	if err := s.check(errors.PhaseQuery, "dcgmGetDeviceAttributes", st); err != nil {
		return dcgm.DeviceAttributes{}, err
	}
	return attrs, nil
}

// GetDeviceTopology returns one link record per peer GPU of gpuID. A
// not-supported reply from the library means the device has no topology
// information and yields an empty result, not an error.
func (s *Session) GetDeviceTopology(gpuID uint) ([]dcgm.P2PLink, error) {
	if err := s.ensureOpen(errors.PhaseTopology); err != nil {
		return nil, err
	}
	topo, st := s.lib.GetDeviceTopology(s.handle, uint32(gpuID))
	if st == dcgm.StatusNotSupported {
		return nil, nil
	}
	if err := s.check(errors.PhaseTopology, "dcgmGetDeviceTopology", st); err != nil {
		return nil, err
	}
	if int(topo.NumGpus) != len(topo.GpuPaths) {
		return nil, errors.CorruptReply(errors.PhaseTopology, "dcgmGetDeviceTopology",
			fmt.Sprintf("reported %d peers, capacity %d", topo.NumGpus, native.MaxNumDevices))
	}

	// The queried GPU's bus id comes from its attributes.
	attrs, err := s.GetDeviceAttributes(gpuID)
	if err != nil {
		return nil, err
	}

	links := make([]dcgm.P2PLink, len(topo.GpuPaths))
	for i, p := range topo.GpuPaths {
		links[i] = dcgm.P2PLink{
			GPU:   uint(p.GpuID),
			BusID: attrs.Identifiers.PCIBusID,
			Path:  p.Path,
		}
	}
	return links, nil
}

// SelectGpusByTopology asks the host engine to choose the
// topologically optimal subset of numGpus devices from gpuIDs. Ids
// above dcgm.MaxBitmaskGPUs are rejected before any native call.
func (s *Session) SelectGpusByTopology(gpuIDs []uint, numGpus uint) ([]uint, error) {
	if err := s.ensureOpen(errors.PhaseTopology); err != nil {
		return nil, err
	}
	if len(gpuIDs) == 0 {
		return nil, errors.InvalidArgument(errors.PhaseTopology, "empty gpu id set")
	}
	mask, err := dcgm.GpuBitmask(gpuIDs)
	if err != nil {
		return nil, err
	}
	out, st := s.lib.SelectGpusByTopology(s.handle, mask, uint32(numGpus), 0)
	if err := s.check(errors.PhaseTopology, "dcgmSelectGpusByTopology", st); err != nil {
		return nil, err
	}
	return dcgm.GpuIDsFromBitmask(out), nil
}

// GetNvLinkLinkStatus returns the state of every NVLink lane of every
// GPU and NvSwitch known to the host engine.
func (s *Session) GetNvLinkLinkStatus() ([]dcgm.NvLinkStatus, error) {
	if err := s.ensureOpen(errors.PhaseQuery); err != nil {
		return nil, err
	}
	reply, st := s.lib.GetNvLinkLinkStatus(s.handle)
	if err := s.check(errors.PhaseQuery, "dcgmGetNvLinkLinkStatus", st); err != nil {
		return nil, err
	}
	if int(reply.NumGpus) != len(reply.Gpus) || int(reply.NumNvSwitches) != len(reply.NvSwitches) {
		return nil, errors.CorruptReply(errors.PhaseQuery, "dcgmGetNvLinkLinkStatus",
			fmt.Sprintf("reported %d gpus and %d switches exceed capacity",
				reply.NumGpus, reply.NumNvSwitches))
	}

	var statuses []dcgm.NvLinkStatus
	for _, gpu := range reply.Gpus {
		for j, state := range gpu.LinkStates {
			statuses = append(statuses, dcgm.NvLinkStatus{
				ParentID:   uint(gpu.EntityID),
				ParentType: dcgm.EntityGroupGPU,
				State:      state,
				Index:      uint(j),
			})
		}
	}
	for _, sw := range reply.NvSwitches {
		for j, state := range sw.LinkStates {
			statuses = append(statuses, dcgm.NvLinkStatus{
				ParentID:   uint(sw.EntityID),
				ParentType: dcgm.EntityGroupSwitch,
				State:      state,
				Index:      uint(j),
			})
		}
	}
	return statuses, nil
}

// populatedPrefix converts the populated region of an output buffer,
// rejecting counts beyond the buffer's capacity instead of trusting the
// library's constant to match the installed version.
func populatedPrefix(buf []uint32, count int, op string) ([]uint, error) {
	if count < 0 || count > len(buf) {
		return nil, errors.CorruptReply(errors.PhaseQuery, op,
			fmt.Sprintf("reported count %d exceeds buffer capacity %d", count, len(buf)))
	}
	ids := make([]uint, count)
	for i, v := range buf[:count] {
		ids[i] = uint(v)
	}
	return ids, nil
}
