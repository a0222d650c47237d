package importer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"countyloader/internal/domain"
	"countyloader/internal/mapping"
	"countyloader/internal/store"
)

// Pipeline names.
const (
	ExtraFeatures      = "extra_features"
	NeighborhoodCodes  = "neighborhood_codes"
	PropertyData       = "property_data"
	StructuralElements = "structural_elements"
)

// Destination tables.
var (
	ExtraFeaturesTable = &store.Table{
		Name:    "extra_features_detail",
		Columns: store.TextColumns(domain.ExtraFeatureColumns, "bld_num", "act_yr", "eff_yr", "roll_yr"),
		Key:     []string{"acct"},
	}
	NeighborhoodCodesTable = &store.Table{
		Name:    "neighborhood_codes",
		Columns: store.TextColumns(domain.NeighborhoodCodeColumns, "bld_num"),
		Key:     []string{"acct"},
		Unique:  true,
	}
	PropertyDataTable = &store.Table{
		Name:    "property_data",
		Columns: store.TextColumns(domain.PropertyAccountColumns, "yr", "yr_impr", "yr_annexed"),
		Key:     []string{"acct"},
		Unique:  true,
	}
	StructuralElementsTable = &store.Table{
		Name:    "structural_elements",
		Columns: store.TextColumns(domain.StructuralElementColumns, "bld_num"),
		Key:     []string{"acct", "bld_num", "code"},
		Unique:  true,
	}
)

// ExtraFeaturesSpec loads extra_features_detail{1,2}.txt. The table has no
// uniqueness constraint, so re-runs rely on the pre-loaded account set.
func ExtraFeaturesSpec() Spec[domain.ExtraFeature] {
	return Spec[domain.ExtraFeature]{
		Name:                 ExtraFeatures,
		Files:                []string{"extra_features_detail1.txt", "extra_features_detail2.txt"},
		Table:                ExtraFeaturesTable,
		Conflict:             store.ConflictNone,
		Preload:              true,
		ContinueOnBatchError: true,
		Map:                  mapping.ExtraFeature,
		Key:                  func(r domain.ExtraFeature) []string { return []string{r.Acct} },
		Values:               domain.ExtraFeature.Values,
	}
}

func NeighborhoodCodesSpec() Spec[domain.NeighborhoodCode] {
	return Spec[domain.NeighborhoodCode]{
		Name:                 NeighborhoodCodes,
		Files:                []string{"real_neighborhood_code.txt"},
		Table:                NeighborhoodCodesTable,
		Conflict:             store.ConflictDoNothing,
		ContinueOnBatchError: true,
		Map:                  mapping.NeighborhoodCode,
		Key:                  func(r domain.NeighborhoodCode) []string { return []string{r.Acct} },
		Values:               domain.NeighborhoodCode.Values,
	}
}

// PropertyDataSpec loads real_acct.txt positionally. Existing accounts are
// both pre-loaded and absorbed by ON CONFLICT.
func PropertyDataSpec() Spec[domain.PropertyAccount] {
	return Spec[domain.PropertyAccount]{
		Name:                 PropertyData,
		Files:                []string{"real_acct.txt"},
		Table:                PropertyDataTable,
		Conflict:             store.ConflictDoNothing,
		Preload:              true,
		ContinueOnBatchError: true,
		Map: func(_ *mapping.HeaderIndex, fields []string) (domain.PropertyAccount, bool) {
			return mapping.PropertyAccount(fields)
		},
		Key:    func(r domain.PropertyAccount) []string { return []string{r.Acct} },
		Values: domain.PropertyAccount.Values,
	}
}

// StructuralElementsSpec loads structural_elem{1,2}.txt. It is the only
// resumable pipeline and aborts on the first failed batch by default, so a
// file is never marked processed with rows missing.
func StructuralElementsSpec() Spec[domain.StructuralElement] {
	return Spec[domain.StructuralElement]{
		Name:      StructuralElements,
		Files:     []string{"structural_elem1.txt", "structural_elem2.txt"},
		Table:     StructuralElementsTable,
		Conflict:  store.ConflictDoNothing,
		Resumable: true,
		Map: func(_ *mapping.HeaderIndex, fields []string) (domain.StructuralElement, bool) {
			return mapping.StructuralElement(fields)
		},
		Key: func(r domain.StructuralElement) []string {
			return []string{r.Acct, strconv.Itoa(r.BldNum), r.Code}
		},
		Values: domain.StructuralElement.Values,
	}
}

// Pipeline is a type-erased Spec, so commands can pick pipelines by name.
type Pipeline struct {
	Name  string
	Table *store.Table
	Run   func(ctx context.Context, st store.Store, opts Options) (Result, error)
}

func erase[T any](spec Spec[T]) Pipeline {
	return Pipeline{
		Name:  spec.Name,
		Table: spec.Table,
		Run: func(ctx context.Context, st store.Store, opts Options) (Result, error) {
			return Run(ctx, st, spec, opts)
		},
	}
}

// Pipelines returns every pipeline in run order: reference data first, then
// accounts, then per-building detail.
func Pipelines() []Pipeline {
	return []Pipeline{
		erase(NeighborhoodCodesSpec()),
		erase(PropertyDataSpec()),
		erase(ExtraFeaturesSpec()),
		erase(StructuralElementsSpec()),
	}
}

// Select returns the pipelines named by sel: "all" (or "") for every
// pipeline, otherwise a comma-separated list of names in run order.
func Select(sel string) ([]Pipeline, error) {
	all := Pipelines()
	sel = strings.TrimSpace(strings.ToLower(sel))
	if sel == "" || sel == "all" {
		return all, nil
	}

	want := map[string]bool{}
	for _, n := range strings.Split(sel, ",") {
		if n = strings.TrimSpace(n); n != "" {
			want[n] = true
		}
	}
	var out []Pipeline
	for _, p := range all {
		if want[p.Name] {
			out = append(out, p)
			delete(want, p.Name)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown pipeline(s) %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// ByName returns the pipeline called name.
func ByName(name string) (Pipeline, error) {
	ps, err := Select(name)
	if err != nil {
		return Pipeline{}, err
	}
	if len(ps) != 1 {
		return Pipeline{}, fmt.Errorf("pipeline name %q must select exactly one pipeline", name)
	}
	return ps[0], nil
}
