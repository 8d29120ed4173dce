package schedule

import "github.com/google/uuid"

// EffectivePrerequisites injects the implicit installation edge in front of
// a module's explicit prerequisites. The installation module itself never
// depends on installation, and an explicit edge is not duplicated. The edge
// is computed at read time and never persisted.
func EffectivePrerequisites(moduleID uuid.UUID, explicit []uuid.UUID, installationID uuid.UUID) []uuid.UUID {
	if installationID == uuid.Nil || moduleID == installationID {
		return explicit
	}
	for _, p := range explicit {
		if p == installationID {
			return explicit
		}
	}
	out := make([]uuid.UUID, 0, len(explicit)+1)
	out = append(out, installationID)
	return append(out, explicit...)
}
