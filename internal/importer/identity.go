package importer

import "github.com/google/uuid"

// keyKind separates the two ways an import record can be keyed, so an
// id-shaped string and a name that happen to be equal never collide.
type keyKind int

const (
	kindExternalID keyKind = iota
	kindName
)

type identityKey struct {
	kind  keyKind
	value string
}

// identityMap maps import-local category keys to resolved store ids.
// It is scoped to a single import call and never persisted; in dry-run
// mode the resolved ids for would-be-created categories are synthesized
// locally and exist nowhere else.
type identityMap map[identityKey]uuid.UUID

// register records the resolved store id for a category record, keyed by
// its external id when present, otherwise by its name.
func (m identityMap) register(externalID, name string, resolved uuid.UUID) {
	if externalID != "" {
		m[identityKey{kindExternalID, externalID}] = resolved
		return
	}
	m[identityKey{kindName, name}] = resolved
}

// resolve looks up a raw category reference from a prompt record. The
// reference may be an external id or a bare name, so both variants are
// tried, id first.
func (m identityMap) resolve(ref string) (uuid.UUID, bool) {
	if id, ok := m[identityKey{kindExternalID, ref}]; ok {
		return id, true
	}
	if id, ok := m[identityKey{kindName, ref}]; ok {
		return id, true
	}
	return uuid.Nil, false
}
