package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer loads the RBAC model only. Policy and grouping rules come from
// the database per company at enforcement time, so no adapter is attached.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath)
}
