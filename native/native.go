package native

import (
	"sync"

	"go.uber.org/zap"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
)

// Handle is an opaque connection handle assigned by the native library
// at connect time. Zero is the invalid sentinel.
type Handle uint64

// OperationMode controls how an embedded host engine schedules its own
// update loop. Values mirror dcgmOperationMode_t.
type OperationMode uint32

const (
	OperationModeAuto   OperationMode = 1
	OperationModeManual OperationMode = 2
)

// Capacity constants of the installed library generation. The library
// reports actual counts at query time; replies above these bounds are
// rejected by the session layer rather than trusted.
const (
	MaxNumDevices             = 32
	MaxNumSwitches            = 12
	NvLinkMaxLinksPerGpu      = 18
	NvLinkMaxLinksPerNvSwitch = 64
)

// DefaultLibraryPath is where the vendor package installs the shared
// library on Debian-family distributions.
const DefaultLibraryPath = "/usr/lib/x86_64-linux-gnu/libdcgm.so.4"

// ConnectParams describes a standalone connection. The struct version
// tag required by the ABI is applied internally.
type ConnectParams struct {
	// TimeoutMs bounds connection establishment. Zero means the
	// library default.
	TimeoutMs uint32

	// PersistAfterDisconnect keeps watches and groups alive in the
	// host engine after this client disconnects.
	PersistAfterDisconnect bool

	// AddressIsUnixSocket marks the address as a filesystem socket
	// path rather than host:port.
	AddressIsUnixSocket bool
}

// GpuPath is one peer entry of a device topology reply.
type GpuPath struct {
	GpuID uint32
	Path  dcgm.PathLevel
}

// DeviceTopology is the translated reply of a device topology query.
// NumGpus is the count the library reported; GpuPaths holds at most the
// capacity bound, so a mismatch indicates a corrupt reply.
type DeviceTopology struct {
	NumGpus  uint32
	GpuPaths []GpuPath
}

// NvLinkEntityStatus is the per-lane link state of one GPU or NvSwitch.
type NvLinkEntityStatus struct {
	EntityID   uint32
	LinkStates []dcgm.NvLinkState
}

// NvLinkStatusReply is the translated reply of an NVLink status query.
type NvLinkStatusReply struct {
	NumGpus       uint32
	NumNvSwitches uint32
	Gpus          []NvLinkEntityStatus
	NvSwitches    []NvLinkEntityStatus
}

// Interface is the function table of the native library in typed Go
// terms. Every method is a direct blocking foreign call returning the
// raw status; translation to errors happens in the session layer.
//
// Output slices are allocated by the caller and populated in place; the
// returned count is the populated prefix length and must not be trusted
// past the slice capacity. Nothing may be read from an output buffer
// before the status has been checked.
type Interface interface {
	Init() dcgm.Status
	Shutdown() dcgm.Status

	StartEmbedded(mode OperationMode) (Handle, dcgm.Status)
	StopEmbedded(h Handle) dcgm.Status
	Connect(addr string, params ConnectParams) (Handle, dcgm.Status)
	Disconnect(h Handle) dcgm.Status

	// ErrorString returns the library's human-readable translation of
	// a status code, or "" when the library has none.
	ErrorString(st dcgm.Status) string

	GetAllSupportedDevices(h Handle, out []uint32) (int, dcgm.Status)
	GetEntityGroupEntities(h Handle, g dcgm.EntityGroup, out []uint32) (int, dcgm.Status)

	GroupCreate(h Handle, name string) (dcgm.GroupHandle, dcgm.Status)
	GroupDestroy(h Handle, group dcgm.GroupHandle) dcgm.Status
	GroupAddEntity(h Handle, group dcgm.GroupHandle, g dcgm.EntityGroup, entityID uint32) dcgm.Status

	FieldGroupCreate(h Handle, name string, fields []dcgm.FieldID) (dcgm.FieldGroupHandle, dcgm.Status)
	FieldGroupDestroy(h Handle, fieldGroup dcgm.FieldGroupHandle) dcgm.Status

	WatchFields(h Handle, group dcgm.GroupHandle, fieldGroup dcgm.FieldGroupHandle,
		updateFreqUs int64, maxKeepAgeSec float64, maxKeepSamples int32) dcgm.Status
	UpdateAllFields(h Handle, wait bool) dcgm.Status

	EntitiesGetLatestValues(h Handle, entities []dcgm.GroupEntityPair, fields []dcgm.FieldID,
		flags dcgm.ValueFlags, out []dcgm.FieldValue) dcgm.Status
	EntityGetLatestValues(h Handle, g dcgm.EntityGroup, entityID uint32,
		fields []dcgm.FieldID, out []dcgm.FieldValue) dcgm.Status

	GetDeviceAttributes(h Handle, gpuID uint32) (dcgm.DeviceAttributes, dcgm.Status)
	GetDeviceTopology(h Handle, gpuID uint32) (DeviceTopology, dcgm.Status)
	SelectGpusByTopology(h Handle, inputMask uint64, numGpus uint32, hints uint64) (uint64, dcgm.Status)
	GetNvLinkLinkStatus(h Handle) (NvLinkStatusReply, dcgm.Status)
}

var (
	loadOnce sync.Once
	loaded   Interface
	loadErr  error
)

// Load opens the native library at path and resolves its entry points.
// The load happens at most once per process: the first call decides the
// outcome and every later call returns the same Interface or the same
// cached error, regardless of path.
func Load(path string) (Interface, error) {
	loadOnce.Do(func() {
		loaded, loadErr = openLibrary(path)
		if loadErr != nil {
			Logger().Error("failed to load DCGM library",
				zap.String("path", path), zap.Error(loadErr))
		} else {
			Logger().Debug("loaded DCGM library", zap.String("path", path))
		}
	})
	return loaded, loadErr
}
