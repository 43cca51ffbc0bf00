package domain

import (
	"strings"
	"time"
)

// ==================== ASSETS ====================

// AssetKind identifies one of the three owned asset collections.
type AssetKind string

const (
	KindDevice    AssetKind = "device"
	KindComponent AssetKind = "component"
	KindAccount   AssetKind = "account"
)

// AllKinds lists every asset kind in a stable order.
var AllKinds = []AssetKind{KindDevice, KindComponent, KindAccount}

// ParseAssetKind normalizes a kind literal coming from a route or a CLI flag.
func ParseAssetKind(s string) (AssetKind, error) {
	k := AssetKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", InvalidKind(s)
	}
	return k, nil
}

// Valid reports whether k is a supported kind.
func (k AssetKind) Valid() bool {
	switch k {
	case KindDevice, KindComponent, KindAccount:
		return true
	}
	return false
}

// EntityName is the Datastore kind / display name of the collection.
func (k AssetKind) EntityName() string {
	switch k {
	case KindDevice:
		return "Device"
	case KindComponent:
		return "Component"
	case KindAccount:
		return "Account"
	}
	return ""
}

// Table is the SQL table / Mongo collection backing the kind.
func (k AssetKind) Table() string {
	switch k {
	case KindDevice:
		return "devices"
	case KindComponent:
		return "components"
	case KindAccount:
		return "accounts"
	}
	return ""
}

// Asset status values. Devices and components use the usage states,
// accounts use the lifecycle states plus a separate assignment mirror.
const (
	StatusAvailable   = "available"
	StatusInUse       = "in_use"
	StatusUnderRepair = "under_repair"
	StatusDisposed    = "disposed"

	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"

	AssignmentAvailable = "available"
	AssignmentAssigned  = "assigned"
)

// Asset is a device, component or account document. AssignedTo is empty
// when nobody owns the asset.
type Asset struct {
	ID               string    `datastore:"-" bson:"_id" json:"id"`
	Kind             AssetKind `datastore:"kind" bson:"kind" json:"kind"`
	Name             string    `datastore:"name" bson:"name" json:"name"`
	Type             string    `datastore:"type,noindex" bson:"type,omitempty" json:"type,omitempty"`
	SerialNumber     string    `datastore:"serialNumber" bson:"serialNumber,omitempty" json:"serialNumber,omitempty"`
	Username         string    `datastore:"username" bson:"username,omitempty" json:"username,omitempty"`
	Manufacturer     string    `datastore:"manufacturer,noindex" bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Model            string    `datastore:"model,noindex" bson:"model,omitempty" json:"model,omitempty"`
	Status           string    `datastore:"status" bson:"status" json:"status"`
	AssignedTo       string    `datastore:"assignedTo" bson:"assignedTo,omitempty" json:"assignedTo"`
	AssignmentStatus string    `datastore:"assignmentStatus" bson:"assignmentStatus,omitempty" json:"assignmentStatus,omitempty"`
	InstalledIn      string    `datastore:"installedIn" bson:"installedIn,omitempty" json:"installedIn,omitempty"`
	UpdatedAt        time.Time `datastore:"updatedAt" bson:"updatedAt" json:"updatedAt"`
}

// IsAssigned reports whether the asset carries an owner reference.
func (a *Asset) IsAssigned() bool {
	return a.AssignedTo != ""
}

// AssetPatch is a partial update. Nil fields are left untouched; a pointer
// to "" clears AssignedTo.
type AssetPatch struct {
	AssignedTo       *string
	Status           *string
	AssignmentStatus *string
}

// Empty reports whether the patch changes nothing.
func (p AssetPatch) Empty() bool {
	return p.AssignedTo == nil && p.Status == nil && p.AssignmentStatus == nil
}

// Apply writes the patch onto a and stamps UpdatedAt.
func (p AssetPatch) Apply(a *Asset, now time.Time) {
	if p.AssignedTo != nil {
		a.AssignedTo = *p.AssignedTo
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.AssignmentStatus != nil {
		a.AssignmentStatus = *p.AssignmentStatus
	}
	a.UpdatedAt = now
}

// AssetFilter narrows CountByFilter. Empty fields do not filter.
type AssetFilter struct {
	AssignedTo  string
	InstalledIn string
}

// ==================== EMPLOYEES ====================

// Employee status values.
const (
	EmployeeActive   = "active"
	EmployeeOnLeave  = "on_leave"
	EmployeeInactive = "inactive"
)

// Employee is the HR record an asset can point at. The employee holds no
// forward list of assets; ownership lives on the asset.
type Employee struct {
	ID         string    `datastore:"-" bson:"_id" json:"id"`
	Name       string    `datastore:"name" bson:"name" json:"name" validate:"required"`
	EmployeeID string    `datastore:"employeeId" bson:"employeeId" json:"employeeId" validate:"required"`
	Email      string    `datastore:"email" bson:"email" json:"email" validate:"required,email"`
	Department string    `datastore:"department" bson:"department,omitempty" json:"department,omitempty"`
	Position   string    `datastore:"position,noindex" bson:"position,omitempty" json:"position,omitempty"`
	Status     string    `datastore:"status" bson:"status" json:"status" validate:"required,oneof=active on_leave inactive"`
	Manager    string    `datastore:"manager" bson:"manager,omitempty" json:"manager,omitempty"`
	CreatedAt  time.Time `datastore:"createdAt" bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `datastore:"updatedAt" bson:"updatedAt" json:"updatedAt"`
}

// EmployeeFilter narrows CountByFilter. Empty fields do not filter.
type EmployeeFilter struct {
	Manager    string
	Email      string
	EmployeeID string
}
