package authz

import (
	"context"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

// Deny reasons carried on Decision. The distinction never reaches API
// clients (both map to a generic access denied response) but is preserved
// for logs and the audit trail.
const (
	ReasonCapabilityDenied = "capability-denied"
	ReasonInstanceDenied   = "instance-denied"
)

// Decision is the outcome of one authorization check. A denial is a value,
// not an error: callers must branch on Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny produces a negative decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err maps a denial to its typed error, or nil for an allow. Convenience for
// callers that want to abort immediately.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonInstanceDenied {
		return appErrors.Clone(appErrors.ErrInstanceDenied, "")
	}
	return appErrors.Clone(appErrors.ErrCapabilityDenied, "")
}

type assignmentReader interface {
	FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error)
}

// Engine evaluates authorization requests against the capability matrix and
// the care-team assignment store. Checks are read-only and safe for
// unlimited concurrency; the assignment store's swap is the only mutator and
// is atomic on its own.
type Engine struct {
	assignments assignmentReader
}

// NewEngine constructs the engine.
func NewEngine(assignments assignmentReader) *Engine {
	return &Engine{assignments: assignments}
}

// Authorize decides whether the principal may exercise the permission on the
// object type, optionally scoped to one patient. patientID is empty for
// operations not scoped to a single patient.
//
// A non-nil error is only returned for infrastructure faults (the assignment
// lookup failing); it is never an allow or a deny.
func (e *Engine) Authorize(ctx context.Context, principal models.Principal, object models.ObjectType, perm models.Permission, patientID string) (Decision, error) {
	// Capability check first: patient-independent and cheap.
	if !CapabilitiesOf(principal.Role, object).Has(perm) {
		return Deny(ReasonCapabilityDenied), nil
	}

	if patientID == "" {
		return Allow, nil
	}

	if !AssignmentScoped(principal.Role, object) {
		return Allow, nil
	}

	assignment, err := e.assignments.FindActive(ctx, patientID, principal.Role)
	if err != nil {
		return Decision{}, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "assignment lookup failed")
	}
	if assignment == nil || assignment.UserID != principal.ID {
		return Deny(ReasonInstanceDenied), nil
	}
	return Allow, nil
}
