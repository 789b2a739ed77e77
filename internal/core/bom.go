package core

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"partpulse/pkg/domain"
)

// BOMLine is one flattened part requirement.
type BOMLine struct {
	PartID     string          `json:"part_id"`
	PartNumber string          `json:"part_number"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LineCost   decimal.Decimal `json:"line_cost"`
}

// BOM is a flattened bill of materials with its cost.
type BOM struct {
	RootID    string          `json:"root_id"`
	Lines     []BOMLine       `json:"lines"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type bomAccumulator map[string]decimal.Decimal

func (acc bomAccumulator) addParts(parts []PartUsage, multiplier decimal.Decimal) {
	for _, usage := range parts {
		acc[usage.PartID] = acc[usage.PartID].Add(usage.Quantity.Mul(multiplier))
	}
}

func (acc bomAccumulator) addAssembly(view domain.TransactionView, a Assembly, multiplier decimal.Decimal) error {
	acc.addParts(a.Parts, multiplier)
	for _, usage := range a.SubAssemblies {
		sub, ok := view.FindSubAssembly(usage.SubAssemblyID)
		if !ok {
			return domain.NotFoundError{Entity: EntitySubAssembly, ID: usage.SubAssemblyID}
		}
		acc.addParts(sub.Parts, multiplier.Mul(usage.Quantity))
	}
	return nil
}

func (acc bomAccumulator) build(view domain.TransactionView, rootID string) (BOM, error) {
	out := BOM{RootID: rootID, Lines: make([]BOMLine, 0, len(acc))}
	for partID, qty := range acc {
		part, ok := view.FindSparePart(partID)
		if !ok {
			return BOM{}, domain.NotFoundError{Entity: EntitySparePart, ID: partID}
		}
		line := BOMLine{
			PartID:     partID,
			PartNumber: part.PartNumber,
			Name:       part.Name,
			Unit:       part.Unit,
			Quantity:   qty,
			UnitCost:   part.UnitCost,
			LineCost:   qty.Mul(part.UnitCost).Round(2),
		}
		out.Lines = append(out.Lines, line)
		out.TotalCost = out.TotalCost.Add(line.LineCost)
	}
	sort.Slice(out.Lines, func(i, j int) bool {
		if out.Lines[i].PartNumber != out.Lines[j].PartNumber {
			return out.Lines[i].PartNumber < out.Lines[j].PartNumber
		}
		return out.Lines[i].PartID < out.Lines[j].PartID
	})
	return out, nil
}

// BOMRollup flattens an assembly, multiplying sub-assembly part quantities
// through, and prices each part at its catalogue unit cost.
func BOMRollup(view domain.TransactionView, assemblyID string) (BOM, error) {
	a, ok := view.FindAssembly(assemblyID)
	if !ok {
		return BOM{}, domain.NotFoundError{Entity: EntityAssembly, ID: assemblyID}
	}
	acc := bomAccumulator{}
	if err := acc.addAssembly(view, a, decimal.NewFromInt(1)); err != nil {
		return BOM{}, err
	}
	return acc.build(view, assemblyID)
}

// MachineBOM sums the bills of all assemblies fitted to a machine.
func MachineBOM(view domain.TransactionView, machineID string) (BOM, error) {
	m, ok := view.FindMachine(machineID)
	if !ok {
		return BOM{}, domain.NotFoundError{Entity: EntityMachine, ID: machineID}
	}
	acc := bomAccumulator{}
	for _, id := range m.AssemblyIDs {
		a, ok := view.FindAssembly(id)
		if !ok {
			return BOM{}, domain.NotFoundError{Entity: EntityAssembly, ID: id}
		}
		if err := acc.addAssembly(view, a, decimal.NewFromInt(1)); err != nil {
			return BOM{}, err
		}
	}
	return acc.build(view, machineID)
}

// AssemblyBOM returns the rolled-up bill of an assembly.
func (s *Service) AssemblyBOM(ctx context.Context, assemblyID string) (BOM, error) {
	var out BOM
	err := s.view(ctx, "assembly_bom", func(v domain.TransactionView) error {
		var err error
		out, err = BOMRollup(v, assemblyID)
		return err
	})
	return out, err
}

// MachineBOM returns the rolled-up bill of a machine.
func (s *Service) MachineBOM(ctx context.Context, machineID string) (BOM, error) {
	var out BOM
	err := s.view(ctx, "machine_bom", func(v domain.TransactionView) error {
		var err error
		out, err = MachineBOM(v, machineID)
		return err
	})
	return out, err
}
