package session

import (
	"time"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
)

// CreateGroup creates an empty entity group in the host engine and
// returns its handle. Membership lives in the host engine; the handle
// is the only thing this side keeps.
func (s *Session) CreateGroup(name string) (dcgm.GroupHandle, error) {
	if err := s.ensureOpen(errors.PhaseGroup); err != nil {
		return 0, err
	}
	group, st := s.lib.GroupCreate(s.handle, name)
	if err := s.check(errors.PhaseGroup, "dcgmGroupCreate", st); err != nil {
		return 0, err
	}
	return group, nil
}

// DestroyGroup removes an entity group from the host engine.
func (s *Session) DestroyGroup(group dcgm.GroupHandle) error {
	if err := s.ensureOpen(errors.PhaseGroup); err != nil {
		return err
	}
	return s.check(errors.PhaseGroup, "dcgmGroupDestroy", s.lib.GroupDestroy(s.handle, group))
}

// AddEntityToGroup adds one entity to an existing group.
func (s *Session) AddEntityToGroup(group dcgm.GroupHandle, g dcgm.EntityGroup, entityID uint) error {
	if err := s.ensureOpen(errors.PhaseGroup); err != nil {
		return err
	}
	return s.check(errors.PhaseGroup, "dcgmGroupAddEntity",
		s.lib.GroupAddEntity(s.handle, group, g, uint32(entityID)))
}

// FieldGroupCreate creates a named set of field ids in the host engine.
func (s *Session) FieldGroupCreate(name string, fields []dcgm.FieldID) (dcgm.FieldGroupHandle, error) {
	if err := s.ensureOpen(errors.PhaseGroup); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, errors.InvalidArgument(errors.PhaseGroup, "empty field id list")
	}
	fieldGroup, st := s.lib.FieldGroupCreate(s.handle, name, fields)
	if err := s.check(errors.PhaseGroup, "dcgmFieldGroupCreate", st); err != nil {
		return 0, err
	}
	return fieldGroup, nil
}

// FieldGroupDestroy removes a field group from the host engine.
func (s *Session) FieldGroupDestroy(fieldGroup dcgm.FieldGroupHandle) error {
	if err := s.ensureOpen(errors.PhaseGroup); err != nil {
		return err
	}
	return s.check(errors.PhaseGroup, "dcgmFieldGroupDestroy",
		s.lib.FieldGroupDestroy(s.handle, fieldGroup))
}

// WatchFields subscribes the entities of group to the fields of
// fieldGroup, sampled every updateFreq and retained for maxKeepAge or
// maxKeepSamples, whichever limit strikes first. The registration is
// followed by a forced synchronous update so the first read is not
// stale; either failure fails the whole operation.
func (s *Session) WatchFields(fieldGroup dcgm.FieldGroupHandle, group dcgm.GroupHandle,
	updateFreq, maxKeepAge time.Duration, maxKeepSamples int) error {
	if err := s.ensureOpen(errors.PhaseWatch); err != nil {
		return err
	}
	st := s.lib.WatchFields(s.handle, group, fieldGroup,
		updateFreq.Microseconds(), maxKeepAge.Seconds(), int32(maxKeepSamples))
	if err := s.check(errors.PhaseWatch, "dcgmWatchFields", st); err != nil {
		return err
	}
	return s.UpdateAllFields(true)
}

// UpdateAllFields asks the host engine to sample every watched field
// now. With wait set, the call blocks until the update cycle finishes.
func (s *Session) UpdateAllFields(wait bool) error {
	if err := s.ensureOpen(errors.PhaseWatch); err != nil {
		return err
	}
	return s.check(errors.PhaseWatch, "dcgmUpdateAllFields", s.lib.UpdateAllFields(s.handle, wait))
}

// EntitiesGetLatestValues reads the newest sample of every given field
// for every given entity. The result has len(entities)*len(fields)
// records, ordered entity-major. Both lists must be non-empty.
func (s *Session) EntitiesGetLatestValues(entities []dcgm.GroupEntityPair, fields []dcgm.FieldID,
	flags dcgm.ValueFlags) ([]dcgm.FieldValue, error) {
	if err := s.ensureOpen(errors.PhaseQuery); err != nil {
		return nil, err
	}
	if len(entities) == 0 || len(fields) == 0 {
		return nil, errors.InvalidArgument(errors.PhaseQuery,
			"latest-value queries need at least one entity and one field")
	}
	out := make([]dcgm.FieldValue, len(entities)*len(fields))
	st := s.lib.EntitiesGetLatestValues(s.handle, entities, fields, flags, out)
	if err := s.check(errors.PhaseQuery, "dcgmEntitiesGetLatestValues", st); err != nil {
		return nil, err
	}
	return out, nil
}

// EntityGetLatestValues reads the newest sample of every given field
// for one entity.
func (s *Session) EntityGetLatestValues(entityID uint, g dcgm.EntityGroup,
	fields []dcgm.FieldID) ([]dcgm.FieldValue, error) {
	if err := s.ensureOpen(errors.PhaseQuery); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.InvalidArgument(errors.PhaseQuery,
			"latest-value queries need at least one field")
	}
	out := make([]dcgm.FieldValue, len(fields))
	st := s.lib.EntityGetLatestValues(s.handle, g, uint32(entityID), fields, out)
	if err := s.check(errors.PhaseQuery, "dcgmEntityGetLatestValues", st); err != nil {
		return nil, err
	}
	return out, nil
}
