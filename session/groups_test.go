package session

import (
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
)

func TestCreateAndDestroyGroup(t *testing.T) {
	f := newFakeLib()
	f.group = dcgm.GroupHandle(7)
	s := mustStandalone(t, f)

	group, err := s.CreateGroup("workers")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if group != 7 {
		t.Errorf("group = %d, want 7", group)
	}

	if err := s.AddEntityToGroup(group, dcgm.EntityGroupGPU, 0); err != nil {
		t.Fatalf("AddEntityToGroup: %v", err)
	}
	if err := s.DestroyGroup(group); err != nil {
		t.Fatalf("DestroyGroup: %v", err)
	}

	for _, op := range []string{"dcgmGroupCreate", "dcgmGroupAddEntity", "dcgmGroupDestroy"} {
		if !f.called(op) {
			t.Errorf("%s not called", op)
		}
	}
}

func TestFieldGroupCreate_EmptyFields(t *testing.T) {
	f := newFakeLib()
	s := mustStandalone(t, f)
	n := len(f.calls)

	_, err := s.FieldGroupCreate("metrics", nil)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseGroup, Kind: errors.KindInvalidArgument}) {
		t.Errorf("unexpected error: %v", err)
	}
	if len(f.calls) != n {
		t.Errorf("empty field list reached the native library: %v", f.calls[n:])
	}
}

func TestWatchFields(t *testing.T) {
	f := newFakeLib()
	s := mustStandalone(t, f)

	err := s.WatchFields(dcgm.FieldGroupHandle(3), dcgm.GroupHandle(7),
		time.Second, 30*time.Second, 100)
	if err != nil {
		t.Fatalf("WatchFields: %v", err)
	}

	want := []string{"dcgmInit", "dcgmConnect_v2", "dcgmWatchFields", "dcgmUpdateAllFields"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}
	if f.lastWatchFreqUs != 1_000_000 {
		t.Errorf("updateFreq = %d us, want 1000000", f.lastWatchFreqUs)
	}
	if f.lastWatchAgeSec != 30 {
		t.Errorf("maxKeepAge = %v s, want 30", f.lastWatchAgeSec)
	}
	if f.lastWatchSamples != 100 {
		t.Errorf("maxKeepSamples = %d, want 100", f.lastWatchSamples)
	}
}

func TestWatchFields_RegistrationFailure(t *testing.T) {
	f := newFakeLib()
	f.statuses["dcgmWatchFields"] = dcgm.StatusBadParam
	s := mustStandalone(t, f)

	err := s.WatchFields(dcgm.FieldGroupHandle(3), dcgm.GroupHandle(7), time.Second, time.Minute, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if f.called("dcgmUpdateAllFields") {
		t.Error("forced update issued after failed registration")
	}
}

func TestWatchFields_ForcedUpdateFailure(t *testing.T) {
	f := newFakeLib()
	f.statuses["dcgmUpdateAllFields"] = dcgm.StatusTimeout
	s := mustStandalone(t, f)

	err := s.WatchFields(dcgm.FieldGroupHandle(3), dcgm.GroupHandle(7), time.Second, time.Minute, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Status != int32(dcgm.StatusTimeout) {
		t.Errorf("forced-update failure not reported: %v", err)
	}
}

func TestEntitiesGetLatestValues(t *testing.T) {
	f := newFakeLib()
	f.values = []dcgm.FieldValue{
		{EntityID: 0, FieldID: 150, FieldType: dcgm.FieldTypeInt64, Int64: 42},
		{EntityID: 0, FieldID: 155, FieldType: dcgm.FieldTypeDouble, Float64: 0.5},
	}
	s := mustStandalone(t, f)

	entities := []dcgm.GroupEntityPair{{EntityGroup: dcgm.EntityGroupGPU, EntityID: 0}}
	fields := []dcgm.FieldID{150, 155}

	values, err := s.EntitiesGetLatestValues(entities, fields, 0)
	if err != nil {
		t.Fatalf("EntitiesGetLatestValues: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
	if values[0].Int64 != 42 || values[1].Float64 != 0.5 {
		t.Errorf("values = %+v", values)
	}
}

func TestEntitiesGetLatestValues_EmptyInputs(t *testing.T) {
	f := newFakeLib()
	s := mustStandalone(t, f)
	n := len(f.calls)

	tests := []struct {
		name     string
		entities []dcgm.GroupEntityPair
		fields   []dcgm.FieldID
	}{
		{"no entities", nil, []dcgm.FieldID{150}},
		{"no fields", []dcgm.GroupEntityPair{{EntityGroup: dcgm.EntityGroupGPU}}, nil},
		{"neither", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.EntitiesGetLatestValues(tt.entities, tt.fields, 0)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseQuery, Kind: errors.KindInvalidArgument}) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if len(f.calls) != n {
		t.Errorf("empty inputs reached the native library: %v", f.calls[n:])
	}
}

func TestEntityGetLatestValues(t *testing.T) {
	f := newFakeLib()
	f.values = []dcgm.FieldValue{
		{EntityGroup: dcgm.EntityGroupGPU, EntityID: 1, FieldID: 150, FieldType: dcgm.FieldTypeInt64, Int64: 65},
	}
	s := mustStandalone(t, f)

	values, err := s.EntityGetLatestValues(1, dcgm.EntityGroupGPU, []dcgm.FieldID{150})
	if err != nil {
		t.Fatalf("EntityGetLatestValues: %v", err)
	}
	if len(values) != 1 || values[0].Int64 != 65 {
		t.Errorf("values = %+v", values)
	}

	if _, err := s.EntityGetLatestValues(1, dcgm.EntityGroupGPU, nil); !stderrors.Is(err,
		&errors.Error{Phase: errors.PhaseQuery, Kind: errors.KindInvalidArgument}) {
		t.Errorf("unexpected error for empty fields: %v", err)
	}
}
