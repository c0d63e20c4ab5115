package session

import (
	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/native"
)

// fakeLib is a scripted native.Interface. Every call is appended to
// calls; per-op statuses default to OK and can be overridden through
// the statuses map, keyed by the native entry point name.
type fakeLib struct {
	calls        []string
	statuses     map[string]dcgm.Status
	errorStrings map[dcgm.Status]string

	handle native.Handle

	devices     []uint32
	deviceCount int
	entities    map[dcgm.EntityGroup][]uint32

	lastConnectAddr   string
	lastConnectParams native.ConnectParams

	group      dcgm.GroupHandle
	fieldGroup dcgm.FieldGroupHandle

	lastWatchFreqUs  int64
	lastWatchAgeSec  float64
	lastWatchSamples int32

	attrs        dcgm.DeviceAttributes
	topology     native.DeviceTopology
	nvlink       native.NvLinkStatusReply
	selectResult uint64
	lastMask     uint64
	lastNumGpus  uint32

	values []dcgm.FieldValue
}

func newFakeLib() *fakeLib {
	return &fakeLib{
		statuses:     map[string]dcgm.Status{},
		errorStrings: map[dcgm.Status]string{},
		handle:       native.Handle(0xd06),
	}
}

func (f *fakeLib) setDevices(ids ...uint32) {
	f.devices = ids
	f.deviceCount = len(ids)
}

func (f *fakeLib) record(op string) dcgm.Status {
	f.calls = append(f.calls, op)
	return f.statuses[op]
}

func (f *fakeLib) Init() dcgm.Status     { return f.record("dcgmInit") }
func (f *fakeLib) Shutdown() dcgm.Status { return f.record("dcgmShutdown") }

func (f *fakeLib) StartEmbedded(mode native.OperationMode) (native.Handle, dcgm.Status) {
	st := f.record("dcgmStartEmbedded")
	return f.handle, st
}

func (f *fakeLib) StopEmbedded(h native.Handle) dcgm.Status {
	return f.record("dcgmStopEmbedded")
}

func (f *fakeLib) Connect(addr string, params native.ConnectParams) (native.Handle, dcgm.Status) {
	st := f.record("dcgmConnect_v2")
	f.lastConnectAddr = addr
	f.lastConnectParams = params
	return f.handle, st
}

func (f *fakeLib) Disconnect(h native.Handle) dcgm.Status {
	return f.record("dcgmDisconnect")
}

func (f *fakeLib) ErrorString(st dcgm.Status) string {
	return f.errorStrings[st]
}

func (f *fakeLib) GetAllSupportedDevices(h native.Handle, out []uint32) (int, dcgm.Status) {
	st := f.record("dcgmGetAllSupportedDevices")
	copy(out, f.devices)
	return f.deviceCount, st
}

func (f *fakeLib) GetEntityGroupEntities(h native.Handle, g dcgm.EntityGroup, out []uint32) (int, dcgm.Status) {
	st := f.record("dcgmGetEntityGroupEntities")
	ids := f.entities[g]
	copy(out, ids)
	return len(ids), st
}

func (f *fakeLib) GroupCreate(h native.Handle, name string) (dcgm.GroupHandle, dcgm.Status) {
	st := f.record("dcgmGroupCreate")
	return f.group, st
}

func (f *fakeLib) GroupDestroy(h native.Handle, group dcgm.GroupHandle) dcgm.Status {
	return f.record("dcgmGroupDestroy")
}

func (f *fakeLib) GroupAddEntity(h native.Handle, group dcgm.GroupHandle, g dcgm.EntityGroup, entityID uint32) dcgm.Status {
	return f.record("dcgmGroupAddEntity")
}

func (f *fakeLib) FieldGroupCreate(h native.Handle, name string, fields []dcgm.FieldID) (dcgm.FieldGroupHandle, dcgm.Status) {
	st := f.record("dcgmFieldGroupCreate")
	return f.fieldGroup, st
}

func (f *fakeLib) FieldGroupDestroy(h native.Handle, fieldGroup dcgm.FieldGroupHandle) dcgm.Status {
	return f.record("dcgmFieldGroupDestroy")
}

func (f *fakeLib) WatchFields(h native.Handle, group dcgm.GroupHandle, fieldGroup dcgm.FieldGroupHandle,
	updateFreqUs int64, maxKeepAgeSec float64, maxKeepSamples int32) dcgm.Status {
	st := f.record("dcgmWatchFields")
	f.lastWatchFreqUs = updateFreqUs
	f.lastWatchAgeSec = maxKeepAgeSec
	f.lastWatchSamples = maxKeepSamples
	return st
}

func (f *fakeLib) UpdateAllFields(h native.Handle, wait bool) dcgm.Status {
	return f.record("dcgmUpdateAllFields")
}

func (f *fakeLib) EntitiesGetLatestValues(h native.Handle, entities []dcgm.GroupEntityPair,
	fields []dcgm.FieldID, flags dcgm.ValueFlags, out []dcgm.FieldValue) dcgm.Status {
	st := f.record("dcgmEntitiesGetLatestValues")
	copy(out, f.values)
	return st
}

func (f *fakeLib) EntityGetLatestValues(h native.Handle, g dcgm.EntityGroup, entityID uint32,
	fields []dcgm.FieldID, out []dcgm.FieldValue) dcgm.Status {
	st := f.record("dcgmEntityGetLatestValues")
	copy(out, f.values)
	return st
}

func (f *fakeLib) GetDeviceAttributes(h native.Handle, gpuID uint32) (dcgm.DeviceAttributes, dcgm.Status) {
	st := f.record("dcgmGetDeviceAttributes")
	return f.attrs, st
}

func (f *fakeLib) GetDeviceTopology(h native.Handle, gpuID uint32) (native.DeviceTopology, dcgm.Status) {
	st := f.record("dcgmGetDeviceTopology")
	return f.topology, st
}

func (f *fakeLib) SelectGpusByTopology(h native.Handle, inputMask uint64, numGpus uint32, hints uint64) (uint64, dcgm.Status) {
	st := f.record("dcgmSelectGpusByTopology")
	f.lastMask = inputMask
	f.lastNumGpus = numGpus
	return f.selectResult, st
}

func (f *fakeLib) GetNvLinkLinkStatus(h native.Handle) (native.NvLinkStatusReply, dcgm.Status) {
	st := f.record("dcgmGetNvLinkLinkStatus")
	return f.nvlink, st
}

func (f *fakeLib) called(op string) bool {
	for _, c := range f.calls {
		if c == op {
			return true
		}
	}
	return false
}
