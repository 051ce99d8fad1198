package schema

// Company is a registry entry for an applicant tracked by default.
type Company struct {
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
	Query  string `json:"query"` // applicant word sent to KIPRIS
}

// Companies is the built-in registry in display order.
var Companies = []Company{
	{Name: "삼성전자", NameEN: "Samsung Electronics", Query: "삼성전자"},
	{Name: "SK하이닉스", NameEN: "SK Hynix", Query: "SK하이닉스"},
	{Name: "삼성디스플레이", NameEN: "Samsung Display", Query: "삼성디스플레이"},
	{Name: "LG디스플레이", NameEN: "LG Display", Query: "LG디스플레이"},
	{Name: "LG전자", NameEN: "LG Electronics", Query: "LG전자"},
	{Name: "TSMC", NameEN: "TSMC", Query: "TSMC"},
	{Name: "인텔", NameEN: "Intel", Query: "인텔"},
	{Name: "마이크론", NameEN: "Micron", Query: "마이크론"},
	{Name: "어플라이드머티", NameEN: "Applied Materials", Query: "어플라이드머티어리얼즈"},
	{Name: "ASML", NameEN: "ASML", Query: "ASML"},
}

// DefaultCompanies is the selection used when none is configured.
var DefaultCompanies = []string{"삼성전자", "SK하이닉스"}

// LookupCompany resolves a display or English name against the registry.
// Unknown names become a custom entry queried by the name itself.
func LookupCompany(name string) (Company, bool) {
	for _, c := range Companies {
		if c.Name == name || c.NameEN == name {
			return c, true
		}
	}
	return Company{Name: name, NameEN: name, Query: name}, false
}
