package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	id "gymdesk/pkg/domain"
	dErrors "gymdesk/pkg/domain-errors"
	"gymdesk/pkg/platform/sentinel"
)

// ErrCompensationSkipped marks a record that was not rolled back because a newer record's
// rollback failed first.
var ErrCompensationSkipped = errors.New("rollback skipped after an earlier failure")

// CompensationFailure is one rollback step that could not be completed. ID names the record
// left behind.
type CompensationFailure struct {
	Step     string
	Resource string
	ID       string
	Err      error
}

// CompensationError reports a registration that failed and could not be fully rolled back.
// It unwraps to the original failure, so errors.Is and dErrors.CodeOf see the root cause.
type CompensationError struct {
	Cause    error
	Failures []CompensationFailure
}

func (e *CompensationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s %s: %v", f.Resource, f.ID, f.Err))
	}
	return fmt.Sprintf("%v (compensation failed, orphaned: %s)", e.Cause, strings.Join(parts, "; "))
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}

// Orphans lists "resource:id" for every record the failed rollback left behind.
func (e *CompensationError) Orphans() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Resource + ":" + f.ID
	}
	return out
}

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant ID required")
	}
	return nil
}

// wrapTenantErr translates store failures on an existing tenant.
func wrapTenantErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "tenant was modified concurrently, retry")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out while trying to "+action)
	default:
		return dErrors.Wrap(err, dErrors.CodeStore, "failed to "+action)
	}
}
