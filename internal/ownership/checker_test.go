package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locvowork/asset_management/internal/domain"
)

func names(m map[string]string) NameResolver {
	return NameResolverFunc(func(_ context.Context, id string) (string, error) {
		if n, ok := m[id]; ok {
			return n, nil
		}
		return "", errors.New("lookup failed")
	})
}

func TestCheckAssign(t *testing.T) {
	ctx := context.Background()
	c := NewChecker(names(map[string]string{"alice": "Alice"}))

	t.Run("free asset", func(t *testing.T) {
		d := c.CheckAssign(ctx, &domain.Asset{ID: "d1"}, "bob")
		assert.True(t, d.Allowed)
		assert.Empty(t, d.Reason)
	})

	t.Run("already owned by requester", func(t *testing.T) {
		d := c.CheckAssign(ctx, &domain.Asset{ID: "d1", AssignedTo: "bob"}, "bob")
		assert.False(t, d.Allowed)
		assert.Equal(t, "already owned by this employee", d.Reason)
	})

	t.Run("owned by someone else", func(t *testing.T) {
		d := c.CheckAssign(ctx, &domain.Asset{ID: "d1", AssignedTo: "alice"}, "bob")
		assert.False(t, d.Allowed)
		assert.Equal(t, "owned by employee Alice", d.Reason)
	})

	t.Run("owner name lookup fails", func(t *testing.T) {
		d := c.CheckAssign(ctx, &domain.Asset{ID: "d1", AssignedTo: "ghost"}, "bob")
		assert.False(t, d.Allowed)
		assert.Equal(t, "owned by employee Unknown", d.Reason)
	})

	t.Run("no resolver", func(t *testing.T) {
		d := NewChecker(nil).CheckAssign(ctx, &domain.Asset{ID: "d1", AssignedTo: "alice"}, "bob")
		assert.Equal(t, "owned by employee Unknown", d.Reason)
	})
}

func TestCheckUnassign(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		name    string
		owner   string
		request string
		allowed bool
	}{
		{"owner releases", "alice", "alice", true},
		{"unowned asset", "", "alice", false},
		{"someone else's asset", "bob", "alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.CheckUnassign(&domain.Asset{AssignedTo: tt.owner}, tt.request)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, "not assigned to this employee", d.Reason)
			}
		})
	}
}

func TestCheckIsRepeatable(t *testing.T) {
	ctx := context.Background()
	c := NewChecker(names(map[string]string{"alice": "Alice"}))
	a := &domain.Asset{AssignedTo: "alice"}

	first := c.CheckAssign(ctx, a, "bob")
	second := c.CheckAssign(ctx, a, "bob")
	assert.Equal(t, first, second)
	assert.Equal(t, "alice", a.AssignedTo)
}
