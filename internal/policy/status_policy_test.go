package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/asset_management/internal/domain"
)

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestTargetState(t *testing.T) {
	tests := []struct {
		kind             domain.AssetKind
		action           Action
		status           string
		assignmentStatus string
	}{
		{domain.KindDevice, ActionAssign, domain.StatusInUse, "<nil>"},
		{domain.KindDevice, ActionUnassign, domain.StatusAvailable, "<nil>"},
		{domain.KindComponent, ActionAssign, domain.StatusInUse, "<nil>"},
		{domain.KindComponent, ActionUnassign, domain.StatusAvailable, "<nil>"},
		{domain.KindAccount, ActionAssign, "<nil>", domain.AssignmentAssigned},
		{domain.KindAccount, ActionUnassign, domain.StatusActive, domain.AssignmentAvailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.action), func(t *testing.T) {
			st, err := TargetState(tt.kind, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.status, deref(st.Status))
			assert.Equal(t, tt.assignmentStatus, deref(st.AssignmentStatus))
		})
	}
}

func TestTargetStateRejectsUnknownInput(t *testing.T) {
	_, err := TargetState("printer", ActionAssign)
	assert.True(t, domain.IsInvalidKind(err))

	_, err = TargetState(domain.KindDevice, "transfer")
	assert.Equal(t, domain.CodeInvalid, domain.CodeOf(err))
}

func TestStatePatch(t *testing.T) {
	st, err := TargetState(domain.KindAccount, ActionUnassign)
	require.NoError(t, err)

	p := st.Patch("")
	require.NotNil(t, p.AssignedTo)
	assert.Equal(t, "", *p.AssignedTo)

	a := domain.Asset{Kind: domain.KindAccount, Status: domain.StatusExpired, AssignedTo: "e1", AssignmentStatus: domain.AssignmentAssigned}
	p.Apply(&a, a.UpdatedAt)
	assert.Equal(t, "", a.AssignedTo)
	assert.Equal(t, domain.StatusActive, a.Status)
	assert.Equal(t, domain.AssignmentAvailable, a.AssignmentStatus)
}

func TestExpectedMirror(t *testing.T) {
	tests := []struct {
		name   string
		asset  domain.Asset
		ok     bool
		status string
		mirror string
	}{
		{
			name:   "drifted account gets assigned",
			asset:  domain.Asset{Kind: domain.KindAccount, AssignedTo: "e1", AssignmentStatus: domain.AssignmentAvailable, Status: domain.StatusExpired},
			ok:     true,
			status: "<nil>",
			mirror: domain.AssignmentAssigned,
		},
		{
			name:   "freed account gets available",
			asset:  domain.Asset{Kind: domain.KindAccount, AssignmentStatus: domain.AssignmentAssigned},
			ok:     true,
			status: "<nil>",
			mirror: domain.AssignmentAvailable,
		},
		{
			name:  "consistent account",
			asset: domain.Asset{Kind: domain.KindAccount, AssignedTo: "e1", AssignmentStatus: domain.AssignmentAssigned},
		},
		{
			name:   "owned device marked available",
			asset:  domain.Asset{Kind: domain.KindDevice, AssignedTo: "e1", Status: domain.StatusAvailable},
			ok:     true,
			status: domain.StatusInUse,
			mirror: "<nil>",
		},
		{
			name:   "free component marked in use",
			asset:  domain.Asset{Kind: domain.KindComponent, Status: domain.StatusInUse},
			ok:     true,
			status: domain.StatusAvailable,
			mirror: "<nil>",
		},
		{
			name:  "device under repair is lifecycle state",
			asset: domain.Asset{Kind: domain.KindDevice, AssignedTo: "e1", Status: domain.StatusUnderRepair},
		},
		{
			name:  "disposed component is lifecycle state",
			asset: domain.Asset{Kind: domain.KindComponent, Status: domain.StatusDisposed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ExpectedMirror(tt.asset)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.True(t, p.Empty())
				return
			}
			assert.Nil(t, p.AssignedTo, "mirror correction must never touch the owner")
			assert.Equal(t, tt.status, deref(p.Status))
			assert.Equal(t, tt.mirror, deref(p.AssignmentStatus))
		})
	}
}
