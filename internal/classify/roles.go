package classify

import "encoding/json"

// Roles is an immutable role → column assignment produced by Classify.
type Roles struct {
	m map[Role]string
}

// NewRoles builds an assignment from an explicit map, copying it.
func NewRoles(m map[Role]string) Roles {
	cp := make(map[Role]string, len(m))
	for k, v := range m {
		if v != "" {
			cp[k] = v
		}
	}
	return Roles{m: cp}
}

// Column returns the column bound to role.
func (r Roles) Column(role Role) (string, bool) {
	c, ok := r.m[role]
	return c, ok
}

// Has reports whether role is bound.
func (r Roles) Has(role Role) bool {
	_, ok := r.m[role]
	return ok
}

// Len returns the number of bound roles.
func (r Roles) Len() int {
	return len(r.m)
}

// Map returns a copy of the assignment.
func (r Roles) Map() map[Role]string {
	cp := make(map[Role]string, len(r.m))
	for k, v := range r.m {
		cp[k] = v
	}
	return cp
}

// Unassigned lists the roles with no column, in display order.
func (r Roles) Unassigned() []Role {
	var out []Role
	for _, role := range AllRoles {
		if !r.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

func (r Roles) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}
