package dcgm

// Status is a raw return code from the native library. Values mirror
// dcgmReturn_t; they are dictated by the installed library and are not
// versioned by this project.
type Status int32

const (
	StatusOK                 Status = 0
	StatusBadParam           Status = -1
	StatusGenericError       Status = -3
	StatusMemory             Status = -4
	StatusNotConfigured      Status = -5
	StatusNotSupported       Status = -6
	StatusInitError          Status = -7
	StatusNvmlError          Status = -8
	StatusPending            Status = -9
	StatusUninitialized      Status = -10
	StatusTimeout            Status = -11
	StatusVerMismatch        Status = -12
	StatusUnknownField       Status = -13
	StatusNoData             Status = -14
	StatusStaleData          Status = -15
	StatusNotWatched         Status = -16
	StatusNoPermission       Status = -17
	StatusGPUIsLost          Status = -18
	StatusResetRequired      Status = -19
	StatusConnectionNotValid Status = -20
	StatusGPUNotSupported    Status = -21
	StatusGroupIncompatible  Status = -22
	StatusMaxLimit           Status = -23
	StatusLibraryNotFound    Status = -24
	StatusDuplicateKey       Status = -25
	StatusGPUInSyncBoostGrp  Status = -26
	StatusGPUNotInSyncBoost  Status = -27
	StatusRequiresRoot       Status = -28
	StatusNvvsError          Status = -29
	StatusInsufficientSize   Status = -30
	StatusFieldUnsupported   Status = -31
	StatusModuleNotLoaded    Status = -32
	StatusInUse              Status = -33
	StatusGroupIsEmpty       Status = -34
	StatusProfilingNotSupp   Status = -35
	StatusProfilingLibError  Status = -36
	StatusProfilingMultiPass Status = -37
	StatusDiagAlreadyRunning Status = -38
	StatusDiagBadJSON        Status = -39
	StatusDiagBadLaunch      Status = -40
	StatusDiagVariance       Status = -41
	StatusDiagThreshold      Status = -42
	StatusInsufficientDrvVer Status = -43
	StatusInstanceNotFound   Status = -44
	StatusComputeNotFound    Status = -45
	StatusChildNotKilled     Status = -46
	StatusProfilingNoMIG     Status = -47
	StatusPaused             Status = -48
	StatusAlreadyInitialized Status = -49
)
