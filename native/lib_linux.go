//go:build linux && cgo

package native

/*
#cgo LDFLAGS: -ldl -Wl,--unresolved-symbols=ignore-in-object-files
#include <stdlib.h>
#include <dlfcn.h>
#include <dcgm_agent.h>
#include <dcgm_structs.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
)

// ABI revisions of the versioned structs this binding passes across the
// boundary. They must track the header generation the module is built
// against.
const (
	connectParamsRevision    = 2
	deviceAttributesRevision = 3
	deviceTopologyRevision   = 1
	nvLinkStatusRevision     = 4
)

// lib calls into libdcgm through the C declarations above. Symbols are
// left unresolved at link time and bound lazily out of the handle
// opened with RTLD_GLOBAL in openLibrary.
type lib struct {
	handle unsafe.Pointer
}

func openLibrary(path string) (Interface, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	h := C.dlopen(cPath, C.RTLD_LAZY|C.RTLD_GLOBAL)
	if h == nil {
		return nil, errors.LibraryLoad(path, fmt.Errorf("dlopen: %s", C.GoString(C.dlerror())))
	}

	// Fail fast if the object is not a host engine client library.
	probe := C.CString("dcgmInit")
	defer C.free(unsafe.Pointer(probe))
	if C.dlsym(h, probe) == nil {
		C.dlclose(h)
		return nil, errors.LibraryLoad(path, fmt.Errorf("dlsym dcgmInit: %s", C.GoString(C.dlerror())))
	}

	return &lib{handle: unsafe.Pointer(h)}, nil
}

func (l *lib) Init() dcgm.Status {
	return dcgm.Status(C.dcgmInit())
}

func (l *lib) Shutdown() dcgm.Status {
	return dcgm.Status(C.dcgmShutdown())
}

func (l *lib) StartEmbedded(mode OperationMode) (Handle, dcgm.Status) {
	var h C.dcgmHandle_t
	st := C.dcgmStartEmbedded(C.dcgmOperationMode_t(mode), &h)
	return Handle(h), dcgm.Status(st)
}

func (l *lib) StopEmbedded(h Handle) dcgm.Status {
	return dcgm.Status(C.dcgmStopEmbedded(C.dcgmHandle_t(h)))
}

func (l *lib) Connect(addr string, params ConnectParams) (Handle, dcgm.Status) {
	cAddr := C.CString(addr)
	defer C.free(unsafe.Pointer(cAddr))

	var cp C.dcgmConnectV2Params_t
	cp.version = C.uint(StructVersion(uint32(unsafe.Sizeof(cp)), connectParamsRevision))
	cp.timeoutMs = C.uint(params.TimeoutMs)
	cp.persistAfterDisconnect = cBool(params.PersistAfterDisconnect)
	cp.addressIsUnixSocket = cBool(params.AddressIsUnixSocket)

	var h C.dcgmHandle_t
	st := C.dcgmConnect_v2(cAddr, &cp, &h)
	return Handle(h), dcgm.Status(st)
}

func (l *lib) Disconnect(h Handle) dcgm.Status {
	return dcgm.Status(C.dcgmDisconnect(C.dcgmHandle_t(h)))
}

func (l *lib) ErrorString(st dcgm.Status) string {
	p := C.errorString(C.dcgmReturn_t(st))
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

func (l *lib) GetAllSupportedDevices(h Handle, out []uint32) (int, dcgm.Status) {
	if len(out) == 0 {
		return 0, dcgm.StatusBadParam
	}
	var count C.int
	st := C.dcgmGetAllSupportedDevices(C.dcgmHandle_t(h),
		(*C.uint)(unsafe.Pointer(&out[0])), &count)
	return int(count), dcgm.Status(st)
}

func (l *lib) GetEntityGroupEntities(h Handle, g dcgm.EntityGroup, out []uint32) (int, dcgm.Status) {
	if len(out) == 0 {
		return 0, dcgm.StatusBadParam
	}
	count := C.int(len(out))
	st := C.dcgmGetEntityGroupEntities(C.dcgmHandle_t(h),
		C.dcgm_field_entity_group_t(g),
		(*C.dcgm_field_eid_t)(unsafe.Pointer(&out[0])), &count, 0)
	return int(count), dcgm.Status(st)
}

func (l *lib) GroupCreate(h Handle, name string) (dcgm.GroupHandle, dcgm.Status) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var group C.dcgmGpuGrp_t
	st := C.dcgmGroupCreate(C.dcgmHandle_t(h), C.DCGM_GROUP_EMPTY, cName, &group)
	return dcgm.GroupHandle(group), dcgm.Status(st)
}

func (l *lib) GroupDestroy(h Handle, group dcgm.GroupHandle) dcgm.Status {
	return dcgm.Status(C.dcgmGroupDestroy(C.dcgmHandle_t(h), C.dcgmGpuGrp_t(group)))
}

func (l *lib) GroupAddEntity(h Handle, group dcgm.GroupHandle, g dcgm.EntityGroup, entityID uint32) dcgm.Status {
	return dcgm.Status(C.dcgmGroupAddEntity(C.dcgmHandle_t(h), C.dcgmGpuGrp_t(group),
		C.dcgm_field_entity_group_t(g), C.dcgm_field_eid_t(entityID)))
}

func (l *lib) FieldGroupCreate(h Handle, name string, fields []dcgm.FieldID) (dcgm.FieldGroupHandle, dcgm.Status) {
	if len(fields) == 0 {
		return 0, dcgm.StatusBadParam
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	cFields := make([]C.ushort, len(fields))
	for i, f := range fields {
		cFields[i] = C.ushort(f)
	}

	var fieldGroup C.dcgmFieldGrp_t
	st := C.dcgmFieldGroupCreate(C.dcgmHandle_t(h), C.int(len(fields)),
		&cFields[0], cName, &fieldGroup)
	return dcgm.FieldGroupHandle(fieldGroup), dcgm.Status(st)
}

func (l *lib) FieldGroupDestroy(h Handle, fieldGroup dcgm.FieldGroupHandle) dcgm.Status {
	return dcgm.Status(C.dcgmFieldGroupDestroy(C.dcgmHandle_t(h), C.dcgmFieldGrp_t(fieldGroup)))
}

func (l *lib) WatchFields(h Handle, group dcgm.GroupHandle, fieldGroup dcgm.FieldGroupHandle,
	updateFreqUs int64, maxKeepAgeSec float64, maxKeepSamples int32) dcgm.Status {
	return dcgm.Status(C.dcgmWatchFields(C.dcgmHandle_t(h), C.dcgmGpuGrp_t(group),
		C.dcgmFieldGrp_t(fieldGroup), C.longlong(updateFreqUs),
		C.double(maxKeepAgeSec), C.int(maxKeepSamples)))
}

func (l *lib) UpdateAllFields(h Handle, wait bool) dcgm.Status {
	return dcgm.Status(C.dcgmUpdateAllFields(C.dcgmHandle_t(h), C.int(cBool(wait))))
}

func (l *lib) EntitiesGetLatestValues(h Handle, entities []dcgm.GroupEntityPair, fields []dcgm.FieldID,
	flags dcgm.ValueFlags, out []dcgm.FieldValue) dcgm.Status {
	if len(entities) == 0 || len(fields) == 0 || len(out) < len(entities)*len(fields) {
		return dcgm.StatusBadParam
	}

	cEntities := make([]C.dcgmGroupEntityPair_t, len(entities))
	for i, e := range entities {
		cEntities[i].entityGroupId = C.dcgm_field_entity_group_t(e.EntityGroup)
		cEntities[i].entityId = C.dcgm_field_eid_t(e.EntityID)
	}
	cFields := make([]C.ushort, len(fields))
	for i, f := range fields {
		cFields[i] = C.ushort(f)
	}
	cValues := make([]C.dcgmFieldValue_v2, len(entities)*len(fields))

	st := C.dcgmEntitiesGetLatestValues(C.dcgmHandle_t(h),
		&cEntities[0], C.uint(len(entities)),
		&cFields[0], C.uint(len(fields)),
		C.uint(flags), &cValues[0])
	if dcgm.Status(st) != dcgm.StatusOK {
		return dcgm.Status(st)
	}

	for i := range cValues {
		out[i] = fieldValueFromV2(&cValues[i])
	}
	return dcgm.StatusOK
}

func (l *lib) EntityGetLatestValues(h Handle, g dcgm.EntityGroup, entityID uint32,
	fields []dcgm.FieldID, out []dcgm.FieldValue) dcgm.Status {
	if len(fields) == 0 || len(out) < len(fields) {
		return dcgm.StatusBadParam
	}

	cFields := make([]C.ushort, len(fields))
	for i, f := range fields {
		cFields[i] = C.ushort(f)
	}
	cValues := make([]C.dcgmFieldValue_v1, len(fields))

	st := C.dcgmEntityGetLatestValues(C.dcgmHandle_t(h),
		C.dcgm_field_entity_group_t(g), C.dcgm_field_eid_t(entityID),
		&cFields[0], C.uint(len(fields)), &cValues[0])
	if dcgm.Status(st) != dcgm.StatusOK {
		return dcgm.Status(st)
	}

	for i := range cValues {
		out[i] = fieldValueFromV1(&cValues[i], g, entityID)
	}
	return dcgm.StatusOK
}

func (l *lib) GetDeviceAttributes(h Handle, gpuID uint32) (dcgm.DeviceAttributes, dcgm.Status) {
	var attrs C.dcgmDeviceAttributes_t
	attrs.version = C.uint(StructVersion(uint32(unsafe.Sizeof(attrs)), deviceAttributesRevision))

	st := C.dcgmGetDeviceAttributes(C.dcgmHandle_t(h), C.uint(gpuID), &attrs)
	if dcgm.Status(st) != dcgm.StatusOK {
		return dcgm.DeviceAttributes{}, dcgm.Status(st)
	}

	return dcgm.DeviceAttributes{
		GPUID: uint(gpuID),
		Identifiers: dcgm.DeviceIdentifiers{
			BrandName:     C.GoString(&attrs.identifiers.brandName[0]),
			DeviceName:    C.GoString(&attrs.identifiers.deviceName[0]),
			PCIBusID:      C.GoString(&attrs.identifiers.pciBusId[0]),
			Serial:        C.GoString(&attrs.identifiers.serial[0]),
			UUID:          C.GoString(&attrs.identifiers.uuid[0]),
			VBIOS:         C.GoString(&attrs.identifiers.vbios[0]),
			DriverVersion: C.GoString(&attrs.identifiers.driverVersion[0]),
		},
	}, dcgm.StatusOK
}

func (l *lib) GetDeviceTopology(h Handle, gpuID uint32) (DeviceTopology, dcgm.Status) {
	var topo C.dcgmDeviceTopology_t
	topo.version = C.uint(StructVersion(uint32(unsafe.Sizeof(topo)), deviceTopologyRevision))

	st := C.dcgmGetDeviceTopology(C.dcgmHandle_t(h), C.uint(gpuID), &topo)
	if dcgm.Status(st) != dcgm.StatusOK {
		return DeviceTopology{}, dcgm.Status(st)
	}

	reply := DeviceTopology{NumGpus: uint32(topo.numGpus)}
	n := clamp(int(topo.numGpus), MaxNumDevices)
	reply.GpuPaths = make([]GpuPath, n)
	for i := 0; i < n; i++ {
		reply.GpuPaths[i] = GpuPath{
			GpuID: uint32(topo.gpuPaths[i].gpuId),
			Path:  dcgm.PathLevel(topo.gpuPaths[i].path),
		}
	}
	return reply, dcgm.StatusOK
}

func (l *lib) SelectGpusByTopology(h Handle, inputMask uint64, numGpus uint32, hints uint64) (uint64, dcgm.Status) {
	var outputMask C.uint64_t
	st := C.dcgmSelectGpusByTopology(C.dcgmHandle_t(h), C.uint64_t(inputMask),
		C.uint32_t(numGpus), &outputMask, C.uint64_t(hints))
	return uint64(outputMask), dcgm.Status(st)
}

func (l *lib) GetNvLinkLinkStatus(h Handle) (NvLinkStatusReply, dcgm.Status) {
	var status C.dcgmNvLinkStatus_t
	status.version = C.uint(StructVersion(uint32(unsafe.Sizeof(status)), nvLinkStatusRevision))

	st := C.dcgmGetNvLinkLinkStatus(C.dcgmHandle_t(h), &status)
	if dcgm.Status(st) != dcgm.StatusOK {
		return NvLinkStatusReply{}, dcgm.Status(st)
	}

	reply := NvLinkStatusReply{
		NumGpus:       uint32(status.numGpus),
		NumNvSwitches: uint32(status.numNvSwitches),
	}

	nGpus := clamp(int(status.numGpus), MaxNumDevices)
	reply.Gpus = make([]NvLinkEntityStatus, nGpus)
	for i := 0; i < nGpus; i++ {
		states := make([]dcgm.NvLinkState, NvLinkMaxLinksPerGpu)
		for j := range states {
			states[j] = dcgm.NvLinkState(status.gpus[i].linkState[j])
		}
		reply.Gpus[i] = NvLinkEntityStatus{
			EntityID:   uint32(status.gpus[i].entityId),
			LinkStates: states,
		}
	}

	nSwitches := clamp(int(status.numNvSwitches), MaxNumSwitches)
	reply.NvSwitches = make([]NvLinkEntityStatus, nSwitches)
	for i := 0; i < nSwitches; i++ {
		states := make([]dcgm.NvLinkState, NvLinkMaxLinksPerNvSwitch)
		for j := range states {
			states[j] = dcgm.NvLinkState(status.nvSwitches[i].linkState[j])
		}
		reply.NvSwitches[i] = NvLinkEntityStatus{
			EntityID:   uint32(status.nvSwitches[i].entityId),
			LinkStates: states,
		}
	}

	return reply, dcgm.StatusOK
}

// fieldValueFromV2 reinterprets the value union of a populated v2 field
// value according to its field type tag.
func fieldValueFromV2(fv *C.dcgmFieldValue_v2) dcgm.FieldValue {
	v := dcgm.FieldValue{
		EntityGroup: dcgm.EntityGroup(fv.entityGroupId),
		EntityID:    uint(fv.entityId),
		FieldID:     dcgm.FieldID(fv.fieldId),
		FieldType:   dcgm.FieldType(fv.fieldType),
		Status:      dcgm.Status(fv.status),
		Timestamp:   int64(fv.ts),
	}
	decodeValueUnion(&v, unsafe.Pointer(&fv.value[0]))
	return v
}

func fieldValueFromV1(fv *C.dcgmFieldValue_v1, g dcgm.EntityGroup, entityID uint32) dcgm.FieldValue {
	v := dcgm.FieldValue{
		EntityGroup: g,
		EntityID:    uint(entityID),
		FieldID:     dcgm.FieldID(fv.fieldId),
		FieldType:   dcgm.FieldType(fv.fieldType),
		Status:      dcgm.Status(fv.status),
		Timestamp:   int64(fv.ts),
	}
	decodeValueUnion(&v, unsafe.Pointer(&fv.value[0]))
	return v
}

func decodeValueUnion(v *dcgm.FieldValue, p unsafe.Pointer) {
	switch v.FieldType {
	case dcgm.FieldTypeInt64, dcgm.FieldTypeTimestamp:
		v.Int64 = *(*int64)(p)
	case dcgm.FieldTypeDouble:
		v.Float64 = *(*float64)(p)
	case dcgm.FieldTypeString:
		v.Str = C.GoString((*C.char)(p))
	}
}

func cBool(b bool) C.uint {
	if b {
		return 1
	}
	return 0
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
