package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"partpulse/internal/core"
	"partpulse/internal/infra/persistence/memory"
	"partpulse/pkg/domain"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestService returns a service whose store and decisions share one clock.
func newTestService(t *testing.T, opts ...core.ServiceOption) (*core.Service, *testClock) {
	t.Helper()
	clock := newTestClock()
	store := memory.NewStore(core.NewDefaultRulesEngine(), memory.WithClock(clock.Now))
	opts = append([]core.ServiceOption{core.WithClock(clock)}, opts...)
	return core.NewService(store, opts...), clock
}

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", v, err)
	}
	return d
}

func sampleRequest(t *testing.T) domain.Request {
	return domain.Request{
		BuildingID:  "B-1",
		Description: "Replace chiller pump",
		Items: []domain.RequestItem{{
			Name:               "Pump seal",
			Quantity:           dec(t, "2"),
			Unit:               "pcs",
			EstimatedUnitPrice: dec(t, "50"),
		}},
	}
}

// submittedRequest creates and submits sampleRequest.
func submittedRequest(t *testing.T, svc *core.Service) domain.Request {
	t.Helper()
	req, _, err := svc.SubmitNew(context.Background(), sampleRequest(t))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	return req
}

func decide(t *testing.T, svc *core.Service, id string, role domain.Role, decision domain.Decision, comments string) (domain.Request, error) {
	t.Helper()
	req, _, err := svc.Decide(context.Background(), core.DecideCommand{
		RequestID: id,
		Role:      role,
		Actor:     string(role) + "-user",
		Decision:  decision,
		Comments:  comments,
	})
	return req, err
}

func mustDecide(t *testing.T, svc *core.Service, id string, role domain.Role, decision domain.Decision, comments string) domain.Request {
	t.Helper()
	req, err := decide(t, svc, id, role, decision, comments)
	if err != nil {
		t.Fatalf("decide %s %s: %v", role, decision, err)
	}
	return req
}

var approvalChain = []domain.Role{
	domain.RoleBuildingTech,
	domain.RoleMaintenanceOrg,
	domain.RoleTechDirector,
	domain.RoleGodAdmin,
}
