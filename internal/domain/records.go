// Package domain holds the typed destination records written by the county
// loaders. Pointer fields are nullable columns; a nil pointer is stored as NULL.
package domain

// ExtraFeature is one row of extra_features_detail{1,2}.txt (pools, sheds,
// paving and other improvements outside the main building).
type ExtraFeature struct {
	Acct         string
	BldNum       *int
	Code         *string
	SDscr        *string
	LDscr        *string
	Dscr         *string
	Grade        *string
	CondCd       *string
	Units        *string
	UnitPrice    *string
	AdjUnitPrice *string
	PctComp      *string
	ActYr        *int
	EffYr        *int
	RollYr       *int
	Dt           *string
	PctCond      *string
	DprOvr       *string
	Note         *string
	Lump         *string
	Value        *string
}

// ExtraFeatureColumns is the column order of Values.
var ExtraFeatureColumns = []string{
	"acct", "bld_num", "code", "s_dscr", "l_dscr", "dscr", "grade", "cond_cd",
	"units", "unit_price", "adj_unit_price", "pct_comp", "act_yr", "eff_yr",
	"roll_yr", "dt", "pct_cond", "dpr_ovr", "note", "lump", "value",
}

func (r ExtraFeature) Values() []any {
	return []any{
		r.Acct, r.BldNum, r.Code, r.SDscr, r.LDscr, r.Dscr, r.Grade, r.CondCd,
		r.Units, r.UnitPrice, r.AdjUnitPrice, r.PctComp, r.ActYr, r.EffYr,
		r.RollYr, r.Dt, r.PctCond, r.DprOvr, r.Note, r.Lump, r.Value,
	}
}

// NeighborhoodCode is one row of real_neighborhood_code.txt.
type NeighborhoodCode struct {
	Acct              string
	BldNum            *int
	NeighborhoodCode  *string
	NeighborhoodGroup *string
	MarketArea1       *string
	MarketArea1Dscr   *string
	MarketArea2       *string
	MarketArea2Dscr   *string
	EconArea          *string
	EconBldClass      *string
	CenterCode        *string
	Dscr              *string
}

var NeighborhoodCodeColumns = []string{
	"acct", "bld_num", "neighborhood_code", "neighborhood_group",
	"market_area_1", "market_area_1_dscr", "market_area_2", "market_area_2_dscr",
	"econ_area", "econ_bld_class", "center_code", "dscr",
}

func (r NeighborhoodCode) Values() []any {
	return []any{
		r.Acct, r.BldNum, r.NeighborhoodCode, r.NeighborhoodGroup,
		r.MarketArea1, r.MarketArea1Dscr, r.MarketArea2, r.MarketArea2Dscr,
		r.EconArea, r.EconBldClass, r.CenterCode, r.Dscr,
	}
}

// StructuralElement is one row of structural_elem{1,2}.txt. The business key
// is Acct+BldNum+Code.
type StructuralElement struct {
	Acct         string
	BldNum       int
	Code         string
	Adj          *string
	Type         *string
	TypeDscr     *string
	CategoryDscr *string
	DorCd        *string
}

var StructuralElementColumns = []string{
	"acct", "bld_num", "code", "adj", "type", "type_dscr", "category_dscr", "dor_cd",
}

func (r StructuralElement) Values() []any {
	return []any{r.Acct, r.BldNum, r.Code, r.Adj, r.Type, r.TypeDscr, r.CategoryDscr, r.DorCd}
}
