package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"yogao/internal/domain/membership"
	"yogao/internal/domain/pass"
)

// TestExecuteUpdateMembership_DirectEdit verifies the orchestrator works
// standalone, without a student patch alongside.
func TestExecuteUpdateMembership_DirectEdit(t *testing.T) {
	_, memberships := seedUpdateFixture(t)
	deps := UpdateMembershipDeps{MembershipStore: memberships, Catalog: testCatalog(t)}

	err := ExecuteUpdateMembership(context.Background(), UpdateMembershipInput{
		MembershipID: "m-1",
		Patch:        MembershipPatch{PaymentMethod: strPtr(membership.PaymentCash)},
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteUpdateMembership: %v", err)
	}

	m, _ := memberships.GetByID(context.Background(), "m-1")
	if m.PaymentMethod != membership.PaymentCash {
		t.Errorf("PaymentMethod = %q, want cash", m.PaymentMethod)
	}
	if m.PassID != pass.Monthly2x {
		t.Errorf("PassID = %q, should be unchanged", m.PassID)
	}
}

// TestExecuteUpdateMembership_PaymentEditKeepsEndDate verifies an edit that
// touches no end-date-deriving field leaves a stored end date as is, even
// one that does not match the pass duration (imported rows carry their end
// date authoritatively).
func TestExecuteUpdateMembership_PaymentEditKeepsEndDate(t *testing.T) {
	_, memberships := seedUpdateFixture(t)
	m, _ := memberships.GetByID(context.Background(), "m-1")
	m.EndDate = day(2026, 5, 15)
	memberships.Save(context.Background(), m)

	deps := UpdateMembershipDeps{MembershipStore: memberships, Catalog: testCatalog(t)}
	err := ExecuteUpdateMembership(context.Background(), UpdateMembershipInput{
		MembershipID: "m-1",
		Patch:        MembershipPatch{PaymentDate: timePtr(day(2026, 3, 5))},
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteUpdateMembership: %v", err)
	}

	got, _ := memberships.GetByID(context.Background(), "m-1")
	if want := day(2026, 5, 15); !got.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want unchanged %v", got.EndDate, want)
	}
	if !got.PaymentDate.Equal(day(2026, 3, 5)) {
		t.Errorf("PaymentDate = %v, want patched value", got.PaymentDate)
	}
}

// TestExecuteUpdateMembership_StartDateRecomputeKeepsStoredHold verifies the
// stored hold rides along when a start-date edit triggers a recompute.
func TestExecuteUpdateMembership_StartDateRecomputeKeepsStoredHold(t *testing.T) {
	_, memberships := seedUpdateFixture(t)
	m, _ := memberships.GetByID(context.Background(), "m-1")
	m.HoldStartDate = day(2026, 3, 10)
	m.HoldEndDate = day(2026, 3, 11)
	m.EndDate = day(2026, 4, 2)
	memberships.Save(context.Background(), m)

	deps := UpdateMembershipDeps{MembershipStore: memberships, Catalog: testCatalog(t)}
	err := ExecuteUpdateMembership(context.Background(), UpdateMembershipInput{
		MembershipID: "m-1",
		Patch:        MembershipPatch{StartDate: timePtr(day(2026, 4, 1))},
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteUpdateMembership: %v", err)
	}

	got, _ := memberships.GetByID(context.Background(), "m-1")
	// Base 2026-04-30 plus 2 inclusive hold days = 2026-05-02
	if want := day(2026, 5, 2); !got.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want %v", got.EndDate, want)
	}
	if !got.HoldStartDate.Equal(day(2026, 3, 10)) {
		t.Error("stored hold should be kept through the recompute")
	}
}

// TestExecuteUpdateMembership_ZeroHoldPairClears verifies supplying an
// explicit zero pair removes the hold and restores the base end date.
func TestExecuteUpdateMembership_ZeroHoldPairClears(t *testing.T) {
	_, memberships := seedUpdateFixture(t)
	m, _ := memberships.GetByID(context.Background(), "m-1")
	m.HoldStartDate = day(2026, 3, 10)
	m.HoldEndDate = day(2026, 3, 11)
	m.EndDate = day(2026, 4, 2)
	memberships.Save(context.Background(), m)

	deps := UpdateMembershipDeps{MembershipStore: memberships, Catalog: testCatalog(t)}
	err := ExecuteUpdateMembership(context.Background(), UpdateMembershipInput{
		MembershipID: "m-1",
		Patch: MembershipPatch{
			HoldStartDate: timePtr(time.Time{}),
			HoldEndDate:   timePtr(time.Time{}),
		},
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteUpdateMembership: %v", err)
	}

	got, _ := memberships.GetByID(context.Background(), "m-1")
	if !got.HoldStartDate.IsZero() || !got.HoldEndDate.IsZero() {
		t.Error("hold should be cleared by a zero pair")
	}
	if want := day(2026, 3, 31); !got.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want base %v", got.EndDate, want)
	}
}

// TestExecuteUpdateMembership_UnknownID verifies the not-found sentinel.
func TestExecuteUpdateMembership_UnknownID(t *testing.T) {
	_, memberships := seedUpdateFixture(t)
	deps := UpdateMembershipDeps{MembershipStore: memberships, Catalog: testCatalog(t)}

	err := ExecuteUpdateMembership(context.Background(), UpdateMembershipInput{
		MembershipID: "missing",
	}, deps)
	if !errors.Is(err, ErrMembershipNotFound) {
		t.Errorf("err = %v, want ErrMembershipNotFound", err)
	}
}
