package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/pass"
)

// ErrMembershipNotFound is returned when the membership does not exist or
// belongs to a different student than the caller named.
var ErrMembershipNotFound = errors.New("membership not found")

// MembershipPatch carries optional membership field updates. Nil means
// unchanged. The end date is never patched directly: it is recomputed when a
// field it derives from changes.
type MembershipPatch struct {
	PassID            *string
	StartDate         *time.Time
	PaymentDate       *time.Time
	PaymentMethod     *string
	CashReceiptIssued *bool
	HoldStartDate     *time.Time
	HoldEndDate       *time.Time
}

// UpdateMembershipInput carries input for the orchestrator. StudentID is an
// optional ownership check; when set, the membership must belong to it.
type UpdateMembershipInput struct {
	StudentID    string
	MembershipID string
	Patch        MembershipPatch
}

// UpdateMembershipDeps holds dependencies for UpdateMembership.
type UpdateMembershipDeps struct {
	MembershipStore membershipStore.Store
	Catalog         *pass.Catalog
}

// ExecuteUpdateMembership merges a patch into a stored membership. The end
// date is recomputed from a fresh base (the merged start date and pass
// duration, with the merged hold applied on top) only when the patch touches
// a field the end date derives from: PassID, StartDate, or a full hold pair.
// An edit that omits the hold fields keeps the stored hold; an edit that
// touches none of the deriving fields leaves the stored end date as is, so
// an imported authoritative end date survives payment-detail edits.
// PRE: MembershipID names an existing membership
// POST: Patched fields persisted; price resnapped on pass change
// INVARIANT: Card payments never carry a cash receipt flag
func ExecuteUpdateMembership(ctx context.Context, input UpdateMembershipInput, deps UpdateMembershipDeps) error {
	m, err := deps.MembershipStore.GetByID(ctx, input.MembershipID)
	if err != nil {
		return ErrMembershipNotFound
	}
	if input.StudentID != "" && m.StudentID != input.StudentID {
		return ErrMembershipNotFound
	}

	patch := input.Patch
	recompute := false
	if patch.PassID != nil {
		def, err := deps.Catalog.Get(*patch.PassID)
		if err != nil {
			return err
		}
		m.PassID = def.ID
		m.Price = def.Price
		recompute = true
	}
	if patch.StartDate != nil {
		m.StartDate = dates.Day(*patch.StartDate)
		recompute = true
	}
	if patch.PaymentDate != nil {
		m.PaymentDate = dates.Day(*patch.PaymentDate)
	}
	if patch.PaymentMethod != nil {
		m.PaymentMethod = *patch.PaymentMethod
	}
	if patch.CashReceiptIssued != nil {
		m.CashReceiptIssued = *patch.CashReceiptIssued
	}
	if patch.HoldStartDate != nil && patch.HoldEndDate != nil {
		// A zero pair clears the hold; any other pair replaces it.
		m.HoldStartDate = dates.Day(*patch.HoldStartDate)
		m.HoldEndDate = dates.Day(*patch.HoldEndDate)
		recompute = true
	}

	if recompute {
		dur, err := deps.Catalog.DurationOf(m.PassID)
		if err != nil {
			return err
		}
		base := pass.ComputeEndDate(m.StartDate, dur)
		m.EndDate = membership.ApplyHold(base, m.HoldStartDate, m.HoldEndDate)
	}

	m.ClampCashReceipt()
	if err := m.Validate(); err != nil {
		return err
	}

	if err := deps.MembershipStore.Save(ctx, m); err != nil {
		return err
	}

	slog.Info("membership_updated",
		"membership_id", m.ID,
		"student_id", m.StudentID,
		"end_date", dates.Format(m.EndDate),
	)
	return nil
}
