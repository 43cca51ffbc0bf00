// Package policy maps an asset kind and an assignment action to the status
// fields the asset must carry afterwards. It performs no I/O.
package policy

import (
	"github.com/locvowork/asset_management/internal/domain"
)

// Action is an assignment transition.
type Action string

const (
	ActionAssign   Action = "assign"
	ActionUnassign Action = "unassign"
)

// State is the target of a transition. Nil fields stay untouched.
type State struct {
	Status           *string
	AssignmentStatus *string
}

// TargetState returns the status row for (kind, action).
//
//	device/component  assign   -> status=in_use
//	device/component  unassign -> status=available
//	account           assign   -> assignmentStatus=assigned
//	account           unassign -> assignmentStatus=available, status=active
//
// Unassigning an account forces it back to active even when it was expired.
func TargetState(kind domain.AssetKind, action Action) (State, error) {
	if action != ActionAssign && action != ActionUnassign {
		return State{}, domain.Invalid("unsupported assignment action " + string(action))
	}
	switch kind {
	case domain.KindDevice, domain.KindComponent:
		if action == ActionAssign {
			return State{Status: str(domain.StatusInUse)}, nil
		}
		return State{Status: str(domain.StatusAvailable)}, nil
	case domain.KindAccount:
		if action == ActionAssign {
			return State{AssignmentStatus: str(domain.AssignmentAssigned)}, nil
		}
		return State{
			AssignmentStatus: str(domain.AssignmentAvailable),
			Status:           str(domain.StatusActive),
		}, nil
	}
	return State{}, domain.InvalidKind(string(kind))
}

// Patch combines the target state with the new owner ("" clears it) into a
// single-document update.
func (s State) Patch(owner string) domain.AssetPatch {
	return domain.AssetPatch{
		AssignedTo:       str(owner),
		Status:           s.Status,
		AssignmentStatus: s.AssignmentStatus,
	}
}

// ExpectedMirror computes the correction that brings the derived
// assignment fields of a back in line with its owner reference. ok is false
// when nothing needs to change.
//
// Accounts only ever get assignmentStatus rewritten. Devices and components
// get status rewritten between available and in_use; under_repair and
// disposed are lifecycle states and are left alone.
func ExpectedMirror(a domain.Asset) (patch domain.AssetPatch, ok bool) {
	switch a.Kind {
	case domain.KindAccount:
		want := domain.AssignmentAvailable
		if a.IsAssigned() {
			want = domain.AssignmentAssigned
		}
		if a.AssignmentStatus == want {
			return domain.AssetPatch{}, false
		}
		return domain.AssetPatch{AssignmentStatus: str(want)}, true
	case domain.KindDevice, domain.KindComponent:
		if a.Status != domain.StatusAvailable && a.Status != domain.StatusInUse {
			return domain.AssetPatch{}, false
		}
		want := domain.StatusAvailable
		if a.IsAssigned() {
			want = domain.StatusInUse
		}
		if a.Status == want {
			return domain.AssetPatch{}, false
		}
		return domain.AssetPatch{Status: str(want)}, true
	}
	return domain.AssetPatch{}, false
}

func str(s string) *string { return &s }
