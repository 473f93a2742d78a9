package permission

// Resolver is an immutable snapshot of module grants for one session. The
// zero value answers false for everything: an absent or unloaded mapping
// denies all access and never errors.
type Resolver struct {
	grants map[string]bool
}

// NewResolver builds a resolver over a module → bool mapping. The mapping
// is copied; later mutations of the argument do not leak in.
func NewResolver(grants map[string]bool) Resolver {
	copied := make(map[string]bool, len(grants))
	for key, allowed := range grants {
		copied[key] = allowed
	}
	return Resolver{grants: copied}
}

// HasAccess reports whether the module key is granted.
func (r Resolver) HasAccess(moduleKey string) bool {
	if r.grants == nil {
		return false
	}
	return r.grants[moduleKey]
}

// HasAnyAccess reports whether at least one of the module keys is granted.
func (r Resolver) HasAnyAccess(moduleKeys ...string) bool {
	for _, key := range moduleKeys {
		if r.HasAccess(key) {
			return true
		}
	}
	return false
}

// Grants returns a copy of the underlying mapping, for API responses.
func (r Resolver) Grants() map[string]bool {
	out := make(map[string]bool, len(r.grants))
	for key, allowed := range r.grants {
		out[key] = allowed
	}
	return out
}
