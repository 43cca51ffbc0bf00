// Package ownership decides whether an assign or unassign request respects
// the single-owner invariant.
package ownership

import (
	"context"

	"github.com/locvowork/asset_management/internal/domain"
)

// UnknownOwner is shown when the current owner's name cannot be resolved.
const UnknownOwner = "Unknown"

const (
	ReasonAlreadyOwned = "already owned by this employee"
	ReasonNotAssigned  = "not assigned to this employee"
)

// NameResolver looks up an employee's display name.
type NameResolver interface {
	OwnerName(ctx context.Context, employeeID string) (string, error)
}

// NameResolverFunc adapts a function to NameResolver.
type NameResolverFunc func(ctx context.Context, employeeID string) (string, error)

func (f NameResolverFunc) OwnerName(ctx context.Context, employeeID string) (string, error) {
	return f(ctx, employeeID)
}

// Checker evaluates ownership requests. The asset and the requested owner
// are resolved by the caller; the checker never fails.
type Checker struct {
	names NameResolver
}

// NewChecker creates a Checker. names may be nil, in which case foreign
// owners are reported as Unknown.
func NewChecker(names NameResolver) *Checker {
	return &Checker{names: names}
}

// CheckAssign allows assigning a free asset and rejects one that already
// has an owner, naming that owner where possible.
func (c *Checker) CheckAssign(ctx context.Context, asset *domain.Asset, ownerID string) domain.Decision {
	switch {
	case !asset.IsAssigned():
		return domain.Allow()
	case asset.AssignedTo == ownerID:
		return domain.Reject(ReasonAlreadyOwned)
	default:
		return domain.Reject("owned by employee " + c.ownerName(ctx, asset.AssignedTo))
	}
}

// CheckUnassign allows releasing an asset only on behalf of its current owner.
func (c *Checker) CheckUnassign(asset *domain.Asset, ownerID string) domain.Decision {
	if !asset.IsAssigned() || asset.AssignedTo != ownerID {
		return domain.Reject(ReasonNotAssigned)
	}
	return domain.Allow()
}

func (c *Checker) ownerName(ctx context.Context, id string) string {
	if c.names == nil {
		return UnknownOwner
	}
	name, err := c.names.OwnerName(ctx, id)
	if err != nil || name == "" {
		return UnknownOwner
	}
	return name
}
