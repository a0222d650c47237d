package domain

// PropertyAccount is one row of real_acct.txt: ownership, situs address,
// classification, areas, current and prior values, notice state and legal
// description of a real property account. Values are kept as text except
// the year columns.
type PropertyAccount struct {
	Acct               string
	Yr                 *int
	MailTo             *string
	MailAddr1          *string
	MailAddr2          *string
	MailCity           *string
	MailState          *string
	MailZip            *string
	MailCountry        *string
	Undeliverable      *string
	StrPfx             *string
	StrNum             *string
	StrNumSfx          *string
	Str                *string
	StrSfx             *string
	StrSfxDir          *string
	StrUnit            *string
	SiteAddr1          *string
	SiteAddr2          *string
	SiteAddr3          *string
	StateClass         *string
	SchoolDist         *string
	MapFacet           *string
	KeyMap             *string
	NeighborhoodCode   *string
	NeighborhoodGrp    *string
	MarketArea1        *string
	MarketArea1Dscr    *string
	MarketArea2        *string
	MarketArea2Dscr    *string
	EconArea           *string
	EconBldClass       *string
	CenterCode         *string
	YrImpr             *int
	YrAnnexed          *int
	SpltDt             *string
	DscCd              *string
	NxtBld             *string
	BldAr              *string
	LandAr             *string
	Acreage            *string
	CapAcct            *string
	SharedCad          *string
	LandVal            *string
	BldVal             *string
	XFeaturesVal       *string
	AgVal              *string
	AssessedVal        *string
	TotApprVal         *string
	TotMktVal          *string
	PriorLandVal       *string
	PriorBldVal        *string
	PriorXFeaturesVal  *string
	PriorAgVal         *string
	PriorTotApprVal    *string
	PriorTotMktVal     *string
	NewConstructionVal *string
	TotRcnVal          *string
	ValueStatus        *string
	Noticed            *string
	NoticeDt           *string
	Protested          *string
	CertifiedDate      *string
	RevDt              *string
	RevBy              *string
	NewOwnDt           *string
	Lgl1               *string
	Lgl2               *string
	Lgl3               *string
	Lgl4               *string
	Jurs               *string
}

// PropertyAccountColumns lists the destination columns in source file order.
var PropertyAccountColumns = []string{
	"acct", "yr", "mailto", "mail_addr_1", "mail_addr_2", "mail_city",
	"mail_state", "mail_zip", "mail_country", "undeliverable", "str_pfx",
	"str_num", "str_num_sfx", "str", "str_sfx", "str_sfx_dir", "str_unit",
	"site_addr_1", "site_addr_2", "site_addr_3", "state_class", "school_dist",
	"map_facet", "key_map", "neighborhood_code", "neighborhood_grp",
	"market_area_1", "market_area_1_dscr", "market_area_2", "market_area_2_dscr",
	"econ_area", "econ_bld_class", "center_code", "yr_impr", "yr_annexed",
	"splt_dt", "dsc_cd", "nxt_bld", "bld_ar", "land_ar", "acreage", "cap_acct",
	"shared_cad", "land_val", "bld_val", "x_features_val", "ag_val",
	"assessed_val", "tot_appr_val", "tot_mkt_val", "prior_land_val",
	"prior_bld_val", "prior_x_features_val", "prior_ag_val", "prior_tot_appr_val",
	"prior_tot_mkt_val", "new_construction_val", "tot_rcn_val", "value_status",
	"noticed", "notice_dt", "protested", "certified_date", "rev_dt", "rev_by",
	"new_own_dt", "lgl_1", "lgl_2", "lgl_3", "lgl_4", "jurs",
}

func (r PropertyAccount) Values() []any {
	return []any{
		r.Acct, r.Yr, r.MailTo, r.MailAddr1, r.MailAddr2, r.MailCity, r.MailState,
		r.MailZip, r.MailCountry, r.Undeliverable, r.StrPfx, r.StrNum, r.StrNumSfx,
		r.Str, r.StrSfx, r.StrSfxDir, r.StrUnit, r.SiteAddr1, r.SiteAddr2,
		r.SiteAddr3, r.StateClass, r.SchoolDist, r.MapFacet, r.KeyMap,
		r.NeighborhoodCode, r.NeighborhoodGrp, r.MarketArea1, r.MarketArea1Dscr,
		r.MarketArea2, r.MarketArea2Dscr, r.EconArea, r.EconBldClass, r.CenterCode,
		r.YrImpr, r.YrAnnexed, r.SpltDt, r.DscCd, r.NxtBld, r.BldAr, r.LandAr,
		r.Acreage, r.CapAcct, r.SharedCad, r.LandVal, r.BldVal, r.XFeaturesVal,
		r.AgVal, r.AssessedVal, r.TotApprVal, r.TotMktVal, r.PriorLandVal,
		r.PriorBldVal, r.PriorXFeaturesVal, r.PriorAgVal, r.PriorTotApprVal,
		r.PriorTotMktVal, r.NewConstructionVal, r.TotRcnVal, r.ValueStatus,
		r.Noticed, r.NoticeDt, r.Protested, r.CertifiedDate, r.RevDt, r.RevBy,
		r.NewOwnDt, r.Lgl1, r.Lgl2, r.Lgl3, r.Lgl4, r.Jurs,
	}
}
