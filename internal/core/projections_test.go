package core_test

import (
	"context"
	"errors"
	"testing"

	"partpulse/internal/core"
	"partpulse/pkg/domain"
)

func TestDashboardProjections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := submittedRequest(t, svc) // 100 in B-1
	b := submittedRequest(t, svc)
	c := submittedRequest(t, svc)
	mustDecide(t, svc, b.ID, domain.RoleBuildingTech, domain.DecisionApproved, "")
	for _, role := range approvalChain[:3] {
		mustDecide(t, svc, c.ID, role, domain.DecisionApproved, "")
	}
	other := sampleRequest(t)
	other.BuildingID = "B-2"
	if _, _, err := svc.CreateRequest(ctx, other); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	pending, err := svc.PendingCounts(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	want := map[domain.Role]int{
		domain.RoleBuildingTech:   1,
		domain.RoleMaintenanceOrg: 1,
		domain.RoleTechDirector:   0,
		domain.RoleGodAdmin:       1,
	}
	for role, n := range want {
		if pending[role] != n {
			t.Fatalf("pending[%s] = %d, want %d (all %v)", role, pending[role], n, pending)
		}
	}

	budget, err := svc.BudgetSummary(ctx)
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if !budget.Total.Equal(dec(t, "400")) || !budget.Approved.Equal(dec(t, "100")) {
		t.Fatalf("unexpected budget totals %s approved %s", budget.Total, budget.Approved)
	}
	if !budget.ByBuilding["B-1"].Equal(dec(t, "300")) || !budget.ByBuilding["B-2"].Equal(dec(t, "100")) {
		t.Fatalf("unexpected per-building budget %v", budget.ByBuilding)
	}
	if !budget.ByStatus[domain.RequestStatusSubmitted].Equal(dec(t, "100")) {
		t.Fatalf("unexpected per-status budget %v", budget.ByStatus)
	}

	history, err := svc.RequestHistory(ctx, a.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.AwaitingRole != domain.RoleBuildingTech || len(history.Approvals) != 0 {
		t.Fatalf("unexpected history %+v", history)
	}
	if _, err := svc.RequestHistory(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestQuoteSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ordered := createQuote(t, svc, nil, "10")
	respond(t, svc, ordered.ID, "5", "20")
	if _, _, err := svc.ReviewQuote(ctx, core.ReviewCommand{QuoteID: ordered.ID, Reviewer: "d", Decision: domain.DecisionApproved}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, _, err := svc.CreateOrder(ctx, core.OrderCommand{QuoteID: ordered.ID, Actor: "buyer"}); err != nil {
		t.Fatalf("order: %v", err)
	}
	createQuote(t, svc, nil, "1")

	summary, err := svc.QuoteSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Counts[domain.QuoteStatusOrdered] != 1 || summary.Counts[domain.QuoteStatusPending] != 1 {
		t.Fatalf("unexpected counts %v", summary.Counts)
	}
	if summary.Orders != 1 || !summary.OrderedValue.Equal(dec(t, "70")) {
		t.Fatalf("unexpected ordered value %s", summary.OrderedValue)
	}
}

func TestCatalogueBOMAndLowStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bolt, _, err := svc.CreateSparePart(ctx, domain.SparePart{PartNumber: "P-100", Name: "Bolt", Unit: "pcs", UnitCost: dec(t, "0.25"), StockLevel: dec(t, "100"), ReorderLevel: dec(t, "50")})
	if err != nil {
		t.Fatalf("create bolt: %v", err)
	}
	bearing, _, err := svc.CreateSparePart(ctx, domain.SparePart{PartNumber: "P-200", Name: "Bearing", Unit: "pcs", UnitCost: dec(t, "12.50"), StockLevel: dec(t, "2"), ReorderLevel: dec(t, "4")})
	if err != nil {
		t.Fatalf("create bearing: %v", err)
	}
	if _, _, err := svc.CreateSparePart(ctx, domain.SparePart{PartNumber: "P-100", Name: "Dup"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate part number to be refused, got %v", err)
	}

	machine, _, err := svc.CreateMachine(ctx, domain.Machine{Name: "Chiller 1", BuildingID: "B-1"})
	if err != nil {
		t.Fatalf("create machine: %v", err)
	}
	hub, _, err := svc.CreateSubAssembly(ctx, domain.SubAssembly{Name: "Hub", Parts: []domain.PartUsage{
		{PartID: bolt.ID, Quantity: dec(t, "4")},
		{PartID: bearing.ID, Quantity: dec(t, "1")},
	}})
	if err != nil {
		t.Fatalf("create sub-assembly: %v", err)
	}
	assembly, _, err := svc.CreateAssembly(ctx, domain.Assembly{
		Name:          "Drive",
		MachineID:     &machine.ID,
		Parts:         []domain.PartUsage{{PartID: bolt.ID, Quantity: dec(t, "2")}},
		SubAssemblies: []domain.SubAssemblyUsage{{SubAssemblyID: hub.ID, Quantity: dec(t, "2")}},
	})
	if err != nil {
		t.Fatalf("create assembly: %v", err)
	}

	bom, err := svc.AssemblyBOM(ctx, assembly.ID)
	if err != nil {
		t.Fatalf("assembly bom: %v", err)
	}
	// bolts: 2 + 2*4 = 10 -> 2.50; bearings: 2*1 = 2 -> 25.00
	if len(bom.Lines) != 2 || bom.Lines[0].PartNumber != "P-100" || !bom.Lines[0].Quantity.Equal(dec(t, "10")) {
		t.Fatalf("unexpected bom lines %+v", bom.Lines)
	}
	if !bom.TotalCost.Equal(dec(t, "27.50")) {
		t.Fatalf("unexpected bom cost %s", bom.TotalCost)
	}
	machineBOM, err := svc.MachineBOM(ctx, machine.ID)
	if err != nil {
		t.Fatalf("machine bom: %v", err)
	}
	if !machineBOM.TotalCost.Equal(bom.TotalCost) {
		t.Fatalf("machine bom %s differs from its only assembly %s", machineBOM.TotalCost, bom.TotalCost)
	}
	if _, err := svc.AssemblyBOM(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, _, err := svc.CreateAssembly(ctx, domain.Assembly{Name: "Ghost", Parts: []domain.PartUsage{{PartID: "nope", Quantity: dec(t, "1")}}}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown part, got %v", err)
	}

	low, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 1 || low[0].ID != bearing.ID {
		t.Fatalf("expected bearing to be low, got %+v", low)
	}
	if _, _, err := svc.AdjustStock(ctx, bolt.ID, dec(t, "-60")); err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if _, _, err := svc.AdjustStock(ctx, bolt.ID, dec(t, "-41")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected negative stock to be refused, got %v", err)
	}
	low, _ = svc.LowStock(ctx)
	if len(low) != 2 || low[0].ID != bolt.ID {
		t.Fatalf("expected bolt first after depletion, got %+v", low)
	}
}
