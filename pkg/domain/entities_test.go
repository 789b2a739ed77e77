package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRequestStatusRankAndTerminal(t *testing.T) {
	path := []RequestStatus{
		RequestStatusDraft,
		RequestStatusSubmitted,
		RequestStatusBuildingApproved,
		RequestStatusMaintenanceApproved,
		RequestStatusDirectorApproved,
		RequestStatusExecuted,
	}
	for i, status := range path {
		if status.Rank() != i {
			t.Fatalf("expected %s rank %d, got %d", status, i, status.Rank())
		}
		if !status.Valid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if RequestStatusRejected.Rank() != -1 || !RequestStatusRejected.Valid() {
		t.Fatalf("rejected must be valid but off the approval path")
	}
	if RequestStatus("ARCHIVED").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
	if !RequestStatusExecuted.Terminal() || !RequestStatusRejected.Terminal() || RequestStatusDirectorApproved.Terminal() {
		t.Fatalf("unexpected terminal classification")
	}
}

func TestRoleLevels(t *testing.T) {
	cases := map[Role]int{
		RoleBuildingTech:   1,
		RoleMaintenanceOrg: 2,
		RoleTechDirector:   3,
		RoleGodAdmin:       4,
		Role("auditor"):    0,
	}
	for role, want := range cases {
		if got := role.Level(); got != want {
			t.Fatalf("role %s: expected level %d, got %d", role, want, got)
		}
	}
}

func TestRequestEstimatedTotal(t *testing.T) {
	req := Request{Items: []RequestItem{
		{Name: "bearing", Quantity: decimal.NewFromInt(3), EstimatedUnitPrice: decimal.RequireFromString("1.005")},
		{Name: "belt", Quantity: decimal.NewFromInt(2), EstimatedUnitPrice: decimal.RequireFromString("10")},
	}}
	if got := req.EstimatedTotal(); !got.Equal(decimal.RequireFromString("23.02")) {
		t.Fatalf("expected 23.02, got %s", got)
	}
}

func TestDecimalFieldsSerialiseAsStrings(t *testing.T) {
	raw, err := json.Marshal(RequestItem{Name: "bolt", Quantity: decimal.NewFromInt(4), EstimatedUnitPrice: decimal.RequireFromString("0.25")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"estimated_unit_price":"0.25"`) {
		t.Fatalf("expected string encoded price, got %s", raw)
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{ValidationError{Field: "items", Reason: "empty"}, ErrValidation},
		{TransitionError{Entity: EntityRequest, From: "DRAFT", Role: RoleGodAdmin, Action: "approve"}, ErrInvalidTransition},
		{TransitionError{Entity: EntityRequest, From: "EXECUTED", Action: "decide", Cause: ErrAlreadyTerminal}, ErrAlreadyTerminal},
		{NotFoundError{Entity: EntityQuote, ID: "q-1"}, ErrNotFound},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.want) {
			t.Fatalf("expected %v to match %v", tc.err, tc.want)
		}
		if tc.err.Error() == "" {
			t.Fatalf("expected message for %T", tc.err)
		}
	}
	if !Retryable(ErrConcurrentModification) || Retryable(ErrNotFound) {
		t.Fatalf("unexpected retryable classification")
	}
}
