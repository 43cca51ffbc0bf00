package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/locvowork/asset_management/internal/domain"
)

// Empty ids are rejected before any RPC, so no emulator is needed.
func TestDatastoreEmptyIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	dc := &DatastoreClient{}
	assets, employees := dc.Assets(), dc.Employees()

	_, err := assets.FindByID(ctx, domain.KindDevice, "")
	assert.True(t, errors.Is(err, domain.ErrNoSuchDocument), err)

	_, err = assets.UpdateConditional(ctx, domain.KindAccount, "", "", domain.AssetPatch{})
	assert.True(t, errors.Is(err, domain.ErrNoSuchDocument), err)

	_, err = employees.GetByID(ctx, "")
	assert.True(t, errors.Is(err, domain.ErrNoSuchDocument), err)

	_, err = assets.FindByID(ctx, domain.AssetKind("printer"), "")
	assert.True(t, domain.IsInvalidKind(err))
}

func TestAssetKeyNamesEntityByKind(t *testing.T) {
	key, err := assetKey(domain.KindComponent, "cmp-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.KindComponent.EntityName(), key.Kind)
	assert.Equal(t, "cmp-1", key.Name)
}
