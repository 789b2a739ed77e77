package core

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"partpulse/pkg/domain"
)

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ValidationError{Field: "name", Reason: "required"}
	}
	return nil
}

func validateUsages(parts []PartUsage) error {
	for i, usage := range parts {
		field := "parts[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(usage.PartID) == "" {
			return domain.ValidationError{Field: field + ".part_id", Reason: "required"}
		}
		if !usage.Quantity.IsPositive() {
			return domain.ValidationError{Field: field + ".quantity", Reason: "must be greater than zero"}
		}
	}
	return nil
}

// CreateSparePart adds a part to the catalogue.
func (s *Service) CreateSparePart(ctx context.Context, part SparePart) (SparePart, Result, error) {
	if err := requireName(part.Name); err != nil {
		return SparePart{}, Result{}, err
	}
	for field, v := range map[string]decimal.Decimal{"unit_cost": part.UnitCost, "stock_level": part.StockLevel, "reorder_level": part.ReorderLevel} {
		if v.IsNegative() {
			return SparePart{}, Result{}, domain.ValidationError{Field: field, Reason: "must not be negative"}
		}
	}
	var created SparePart
	res, err := s.run(ctx, "create_spare_part", []zap.Field{zap.String("part_number", part.PartNumber)}, func(tx domain.Transaction) error {
		for _, existing := range tx.Snapshot().ListSpareParts() {
			if part.PartNumber != "" && existing.PartNumber == part.PartNumber {
				return domain.ValidationError{Field: "part_number", Reason: "already in use"}
			}
		}
		var err error
		created, err = tx.CreateSparePart(part)
		return err
	})
	return created, res, err
}

// AdjustStock adds delta (which may be negative) to a part's stock level.
// Stock never goes below zero.
func (s *Service) AdjustStock(ctx context.Context, partID string, delta decimal.Decimal) (SparePart, Result, error) {
	var updated SparePart
	res, err := s.run(ctx, "adjust_stock", []zap.Field{zap.String("part_id", partID), zap.String("delta", delta.String())}, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateSparePart(partID, func(p *SparePart) error {
			next := p.StockLevel.Add(delta)
			if next.IsNegative() {
				return domain.ValidationError{Field: "delta", Reason: "stock level would drop below zero"}
			}
			p.StockLevel = next
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateMachine registers a maintained asset.
func (s *Service) CreateMachine(ctx context.Context, machine Machine) (Machine, Result, error) {
	if err := requireName(machine.Name); err != nil {
		return Machine{}, Result{}, err
	}
	var created Machine
	res, err := s.run(ctx, "create_machine", []zap.Field{zap.String("building_id", machine.BuildingID)}, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateMachine(machine)
		return err
	})
	return created, res, err
}

// CreateSubAssembly registers a group of parts.
func (s *Service) CreateSubAssembly(ctx context.Context, sub SubAssembly) (SubAssembly, Result, error) {
	if err := requireName(sub.Name); err != nil {
		return SubAssembly{}, Result{}, err
	}
	if err := validateUsages(sub.Parts); err != nil {
		return SubAssembly{}, Result{}, err
	}
	var created SubAssembly
	res, err := s.run(ctx, "create_sub_assembly", nil, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateSubAssembly(sub)
		return err
	})
	return created, res, err
}

// CreateAssembly registers an assembly, linking it to its machine when set.
func (s *Service) CreateAssembly(ctx context.Context, assembly Assembly) (Assembly, Result, error) {
	if err := requireName(assembly.Name); err != nil {
		return Assembly{}, Result{}, err
	}
	if err := validateUsages(assembly.Parts); err != nil {
		return Assembly{}, Result{}, err
	}
	for i, usage := range assembly.SubAssemblies {
		if !usage.Quantity.IsPositive() {
			return Assembly{}, Result{}, domain.ValidationError{Field: "sub_assemblies[" + strconv.Itoa(i) + "].quantity", Reason: "must be greater than zero"}
		}
	}
	var created Assembly
	res, err := s.run(ctx, "create_assembly", nil, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateAssembly(assembly)
		return err
	})
	return created, res, err
}

// ListSpareParts returns the catalogue parts.
func (s *Service) ListSpareParts(ctx context.Context) ([]SparePart, error) {
	var out []SparePart
	err := s.view(ctx, "list_spare_parts", func(v domain.TransactionView) error {
		out = v.ListSpareParts()
		return nil
	})
	return out, err
}

// ListMachines returns the registered machines.
func (s *Service) ListMachines(ctx context.Context) ([]Machine, error) {
	var out []Machine
	err := s.view(ctx, "list_machines", func(v domain.TransactionView) error {
		out = v.ListMachines()
		return nil
	})
	return out, err
}

// ListAssemblies returns the registered assemblies.
func (s *Service) ListAssemblies(ctx context.Context) ([]Assembly, error) {
	var out []Assembly
	err := s.view(ctx, "list_assemblies", func(v domain.TransactionView) error {
		out = v.ListAssemblies()
		return nil
	})
	return out, err
}
