package dcgm

import "fmt"

// Mode selects how a session reaches the DCGM host engine.
type Mode int

const (
	// ModeEmbedded starts an in-process host engine thread inside the
	// native library. No network address is required.
	ModeEmbedded Mode = iota

	// ModeStandalone connects to an already-running host engine over
	// TCP/IP or a unix domain socket.
	ModeStandalone

	// ModeStartHostengine would spawn and manage an external host engine
	// process. It is not implemented; constructing a session with it
	// always fails.
	ModeStartHostengine
)

func (m Mode) String() string {
	switch m {
	case ModeEmbedded:
		return "embedded"
	case ModeStandalone:
		return "standalone"
	case ModeStartHostengine:
		return "start-hostengine"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// EntityGroup is the category tag of a managed hardware unit. Values
// mirror dcgm_field_entity_group_t in the vendor headers.
type EntityGroup uint32

const (
	EntityGroupNone     EntityGroup = 0
	EntityGroupGPU      EntityGroup = 1
	EntityGroupVGPU     EntityGroup = 2
	EntityGroupSwitch   EntityGroup = 3
	EntityGroupInstance EntityGroup = 4
	EntityGroupCompute  EntityGroup = 5
	EntityGroupLink     EntityGroup = 6
	EntityGroupCPU      EntityGroup = 7
	EntityGroupCPUCore  EntityGroup = 8
	EntityGroupConnectX EntityGroup = 9
)

func (g EntityGroup) String() string {
	switch g {
	case EntityGroupGPU:
		return "GPU"
	case EntityGroupSwitch:
		return "SWITCH"
	case EntityGroupConnectX:
		return "NIC"
	case EntityGroupVGPU:
		return "VGPU"
	case EntityGroupInstance:
		return "GPU_I"
	case EntityGroupCompute:
		return "GPU_CI"
	case EntityGroupLink:
		return "LINK"
	case EntityGroupCPU:
		return "CPU"
	case EntityGroupCPUCore:
		return "CPU_CORE"
	default:
		return "N/A"
	}
}

// GroupHandle identifies an entity group created inside the host engine.
// Membership is owned by the native library; the handle is a pure
// pass-through identifier.
type GroupHandle uint64

// FieldGroupHandle identifies a set of field ids created inside the host
// engine.
type FieldGroupHandle uint64

// FieldID names a telemetry metric tracked by the host engine.
type FieldID uint16

// GroupEntityPair addresses one entity within a latest-values query.
type GroupEntityPair struct {
	EntityGroup EntityGroup
	EntityID    uint
}

// ValueFlags modifies latest-values queries.
type ValueFlags uint32

// ValueFlagLive bypasses the host engine's sample cache and reads the
// driver directly.
const ValueFlagLive ValueFlags = 1

// FieldType describes the payload of a FieldValue. Values mirror the
// DCGM_FT_* constants.
type FieldType byte

const (
	FieldTypeDouble    FieldType = 'd'
	FieldTypeInt64     FieldType = 'i'
	FieldTypeString    FieldType = 's'
	FieldTypeBlob      FieldType = 'b'
	FieldTypeTimestamp FieldType = 't'
)

// FieldValue is one populated sample from a latest-values query. Exactly
// one of Int64, Float64, or Str is meaningful, selected by FieldType.
type FieldValue struct {
	EntityGroup EntityGroup
	EntityID    uint
	FieldID     FieldID
	FieldType   FieldType
	Status      Status
	Timestamp   int64 // usec since 1970
	Int64       int64
	Float64     float64
	Str         string
}

// Checked returns an error if the sample's own status marks it unusable.
// The per-sample status is set by the host engine independently of the
// status of the query that fetched it.
func (v FieldValue) Checked() error {
	switch v.Status {
	case StatusOK:
		return nil
	case StatusNotWatched:
		return fmt.Errorf("field %d is not being watched", v.FieldID)
	default:
		return fmt.Errorf("field %d carries error status %d", v.FieldID, v.Status)
	}
}

// DeviceIdentifiers holds the identifying strings of one GPU.
type DeviceIdentifiers struct {
	BrandName     string
	DeviceName    string
	PCIBusID      string
	Serial        string
	UUID          string
	VBIOS         string
	DriverVersion string
}

// DeviceAttributes is the static description of one GPU as reported by
// the host engine.
type DeviceAttributes struct {
	GPUID       uint
	Identifiers DeviceIdentifiers
}

// NvLinkState is the state of a single NVLink lane.
type NvLinkState uint32

const (
	NvLinkStateNotSupported NvLinkState = 0
	NvLinkStateDisabled     NvLinkState = 1
	NvLinkStateDown         NvLinkState = 2
	NvLinkStateUp           NvLinkState = 3
)

func (s NvLinkState) String() string {
	switch s {
	case NvLinkStateNotSupported:
		return "NOT SUPPORTED"
	case NvLinkStateDisabled:
		return "DISABLED"
	case NvLinkStateDown:
		return "DOWN"
	case NvLinkStateUp:
		return "UP"
	default:
		return "ERR: UNKNOWN"
	}
}

// NvLinkStatus is the state of one NVLink lane of one entity (GPU or
// NvSwitch).
type NvLinkStatus struct {
	ParentID   uint
	ParentType EntityGroup
	State      NvLinkState
	Index      uint
}

// P2PLink describes the connectivity between the queried GPU and one
// peer. Path is the raw bit-packed topology value; use its PCIe and
// NVLink methods for the decoded classes.
type P2PLink struct {
	GPU   uint
	BusID string
	Path  PathLevel
}
