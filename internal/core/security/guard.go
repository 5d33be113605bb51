package security

import "github.com/tasktrack/tasktrack-api/internal/core/domain"

// Authorize admits p when its role is in required. An empty required set
// admits any authenticated principal. A nil principal is unauthenticated,
// which always takes precedence over a role mismatch.
func Authorize(p *domain.Principal, required domain.RoleSet) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if len(required) == 0 || required.Has(p.Role) {
		return nil
	}
	return domain.ErrForbidden
}
