package mapping

import "countyloader/internal/domain"

// ExtraFeature maps an extra_features_detail row by header name.
func ExtraFeature(h *HeaderIndex, fields []string) (domain.ExtraFeature, bool) {
	acct := h.Get(fields, "acct")
	if acct == "" {
		return domain.ExtraFeature{}, false
	}
	return domain.ExtraFeature{
		Acct:         acct,
		BldNum:       Int(h.Get(fields, "bld_num")),
		Code:         Optional(h.Get(fields, "cd", "code")),
		SDscr:        Optional(h.Get(fields, "s_dscr")),
		LDscr:        Optional(h.Get(fields, "l_dscr")),
		Dscr:         Optional(h.Get(fields, "dscr")),
		Grade:        Optional(h.Get(fields, "grade")),
		CondCd:       Optional(h.Get(fields, "cond_cd")),
		Units:        Optional(h.Get(fields, "units")),
		UnitPrice:    Optional(h.Get(fields, "unit_prc", "unit_price")),
		AdjUnitPrice: Optional(h.Get(fields, "adj_unit_prc", "adj_unit_price")),
		PctComp:      Optional(h.Get(fields, "pct_comp")),
		ActYr:        Int(h.Get(fields, "act_yr")),
		EffYr:        Int(h.Get(fields, "eff_yr")),
		RollYr:       Int(h.Get(fields, "roll_yr")),
		Dt:           Optional(h.Get(fields, "dt")),
		PctCond:      Optional(h.Get(fields, "pct_cond")),
		DprOvr:       Optional(h.Get(fields, "dpr_ovr")),
		Note:         Optional(h.Get(fields, "note")),
		Lump:         Optional(h.Get(fields, "lump_sum", "lump")),
		Value:        Optional(h.Get(fields, "value", "val")),
	}, true
}

// NeighborhoodCode maps a real_neighborhood_code row by header name.
func NeighborhoodCode(h *HeaderIndex, fields []string) (domain.NeighborhoodCode, bool) {
	acct := h.Get(fields, "acct")
	if acct == "" {
		return domain.NeighborhoodCode{}, false
	}
	return domain.NeighborhoodCode{
		Acct:              acct,
		BldNum:            Int(h.Get(fields, "bld_num")),
		NeighborhoodCode:  Optional(h.Get(fields, "neighborhood_code", "nbhd_cd")),
		NeighborhoodGroup: Optional(h.Get(fields, "neighborhood_grp", "neighborhood_group")),
		MarketArea1:       Optional(h.Get(fields, "market_area_1")),
		MarketArea1Dscr:   Optional(h.Get(fields, "market_area_1_dscr")),
		MarketArea2:       Optional(h.Get(fields, "market_area_2")),
		MarketArea2Dscr:   Optional(h.Get(fields, "market_area_2_dscr")),
		EconArea:          Optional(h.Get(fields, "econ_area")),
		EconBldClass:      Optional(h.Get(fields, "econ_bld_class")),
		CenterCode:        Optional(h.Get(fields, "center_code")),
		Dscr:              Optional(h.Get(fields, "dscr")),
	}, true
}

// StructuralElement maps a structural_elem row by position:
//
//	0 acct, 1 bld_num, 2 code, 3 adj, 4 type, 5 type_dscr, 6 category_dscr, 7 dor_cd
//
// bld_num is part of the unique key, so a row whose bld_num is not an integer
// is rejected like a row without an account. A blank code is stored as "".
func StructuralElement(fields []string) (domain.StructuralElement, bool) {
	acct := Field(fields, 0)
	bld := Int(Field(fields, 1))
	if acct == "" || bld == nil {
		return domain.StructuralElement{}, false
	}
	return domain.StructuralElement{
		Acct:         acct,
		BldNum:       *bld,
		Code:         Field(fields, 2),
		Adj:          Optional(Field(fields, 3)),
		Type:         Optional(Field(fields, 4)),
		TypeDscr:     Optional(Field(fields, 5)),
		CategoryDscr: Optional(Field(fields, 6)),
		DorCd:        Optional(Field(fields, 7)),
	}, true
}
