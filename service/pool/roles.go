package pool

import (
	"poolmanager/core"
)

// requireRole reject callers without role
func (s *service) requireRole(caller string, role core.Role) error {
	if caller == "" || s.roles == nil || !s.roles.HasRole(caller, role) {
		return core.ErrUnauthorized
	}

	return nil
}
