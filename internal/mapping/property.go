package mapping

import "countyloader/internal/domain"

// PropertyAccount maps a real_acct.txt row by position. Rows without an
// account number are rejected.
func PropertyAccount(fields []string) (domain.PropertyAccount, bool) {
	acct := Field(fields, 0)
	if acct == "" {
		return domain.PropertyAccount{}, false
	}
	return domain.PropertyAccount{
		Acct:               acct,
		Yr:                 Int(Field(fields, 1)),
		MailTo:             Optional(Field(fields, 2)),
		MailAddr1:          Optional(Field(fields, 3)),
		MailAddr2:          Optional(Field(fields, 4)),
		MailCity:           Optional(Field(fields, 5)),
		MailState:          Optional(Field(fields, 6)),
		MailZip:            Optional(Field(fields, 7)),
		MailCountry:        Optional(Field(fields, 8)),
		Undeliverable:      Optional(Field(fields, 9)),
		StrPfx:             Optional(Field(fields, 10)),
		StrNum:             Optional(Field(fields, 11)),
		StrNumSfx:          Optional(Field(fields, 12)),
		Str:                Optional(Field(fields, 13)),
		StrSfx:             Optional(Field(fields, 14)),
		StrSfxDir:          Optional(Field(fields, 15)),
		StrUnit:            Optional(Field(fields, 16)),
		SiteAddr1:          Optional(Field(fields, 17)),
		SiteAddr2:          Optional(Field(fields, 18)),
		SiteAddr3:          Optional(Field(fields, 19)),
		StateClass:         Optional(Field(fields, 20)),
		SchoolDist:         Optional(Field(fields, 21)),
		MapFacet:           Optional(Field(fields, 22)),
		KeyMap:             Optional(Field(fields, 23)),
		NeighborhoodCode:   Optional(Field(fields, 24)),
		NeighborhoodGrp:    Optional(Field(fields, 25)),
		MarketArea1:        Optional(Field(fields, 26)),
		MarketArea1Dscr:    Optional(Field(fields, 27)),
		MarketArea2:        Optional(Field(fields, 28)),
		MarketArea2Dscr:    Optional(Field(fields, 29)),
		EconArea:           Optional(Field(fields, 30)),
		EconBldClass:       Optional(Field(fields, 31)),
		CenterCode:         Optional(Field(fields, 32)),
		YrImpr:             Int(Field(fields, 33)),
		YrAnnexed:          Int(Field(fields, 34)),
		SpltDt:             Optional(Field(fields, 35)),
		DscCd:              Optional(Field(fields, 36)),
		NxtBld:             Optional(Field(fields, 37)),
		BldAr:              Optional(Field(fields, 38)),
		LandAr:             Optional(Field(fields, 39)),
		Acreage:            Optional(Field(fields, 40)),
		CapAcct:            Optional(Field(fields, 41)),
		SharedCad:          Optional(Field(fields, 42)),
		LandVal:            Optional(Field(fields, 43)),
		BldVal:             Optional(Field(fields, 44)),
		XFeaturesVal:       Optional(Field(fields, 45)),
		AgVal:              Optional(Field(fields, 46)),
		AssessedVal:        Optional(Field(fields, 47)),
		TotApprVal:         Optional(Field(fields, 48)),
		TotMktVal:          Optional(Field(fields, 49)),
		PriorLandVal:       Optional(Field(fields, 50)),
		PriorBldVal:        Optional(Field(fields, 51)),
		PriorXFeaturesVal:  Optional(Field(fields, 52)),
		PriorAgVal:         Optional(Field(fields, 53)),
		PriorTotApprVal:    Optional(Field(fields, 54)),
		PriorTotMktVal:     Optional(Field(fields, 55)),
		NewConstructionVal: Optional(Field(fields, 56)),
		TotRcnVal:          Optional(Field(fields, 57)),
		ValueStatus:        Optional(Field(fields, 58)),
		Noticed:            Optional(Field(fields, 59)),
		NoticeDt:           Optional(Field(fields, 60)),
		Protested:          Optional(Field(fields, 61)),
		CertifiedDate:      Optional(Field(fields, 62)),
		RevDt:              Optional(Field(fields, 63)),
		RevBy:              Optional(Field(fields, 64)),
		NewOwnDt:           Optional(Field(fields, 65)),
		Lgl1:               Optional(Field(fields, 66)),
		Lgl2:               Optional(Field(fields, 67)),
		Lgl3:               Optional(Field(fields, 68)),
		Lgl4:               Optional(Field(fields, 69)),
		Jurs:               Optional(Field(fields, 70)),
	}, true
}
