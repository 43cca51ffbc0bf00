package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/locvowork/asset_management/internal/domain"
)

func TestOwnerFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "d1", "assignedTo": "alice"}, ownerFilter("d1", "alice"))
	assert.Equal(t, bson.M{"_id": "d1", "assignedTo": bson.M{"$in": bson.A{nil, ""}}}, ownerFilter("d1", ""))
}

func TestPatchUpdate(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("assign sets owner", func(t *testing.T) {
		u := patchUpdate(domain.AssetPatch{AssignedTo: strp("alice"), Status: strp(domain.StatusInUse)}, now)
		assert.Equal(t, bson.M{"$set": bson.M{"assignedTo": "alice", "status": domain.StatusInUse, "updatedAt": now}}, u)
	})

	t.Run("release unsets owner", func(t *testing.T) {
		u := patchUpdate(domain.AssetPatch{AssignedTo: strp(""), AssignmentStatus: strp(domain.AssignmentAvailable)}, now)
		assert.Equal(t, bson.M{"assignedTo": ""}, u["$unset"])
		assert.Equal(t, bson.M{"assignmentStatus": domain.AssignmentAvailable, "updatedAt": now}, u["$set"])
	})

	t.Run("mirror only", func(t *testing.T) {
		u := patchUpdate(domain.AssetPatch{Status: strp(domain.StatusAvailable)}, now)
		_, hasUnset := u["$unset"]
		assert.False(t, hasUnset)
	})
}

func TestCountFilters(t *testing.T) {
	assert.Equal(t, bson.M{}, assetCountFilter(domain.AssetFilter{}))
	assert.Equal(t, bson.M{"installedIn": "d1"}, assetCountFilter(domain.AssetFilter{InstalledIn: "d1"}))
	assert.Equal(t, bson.M{"manager": "m", "email": "x@corp.io"},
		employeeCountFilter(domain.EmployeeFilter{Manager: "m", Email: "x@corp.io"}))
}
