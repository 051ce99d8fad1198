package algo

import "github.com/semiconip/patentspike/schema"

// ipcLevel1 labels known IPC subclasses.
var ipcLevel1 = map[string]string{
	"H01L": "반도체 소자/공정",
	"G03F": "포토리소그래피",
	"G09G": "디스플레이 구동",
	"G02F": "LCD/광학 소자",
	"H04N": "이미지센서",
	"H01M": "에너지저장/배터리",
	"H02M": "전력변환",
	"G06N": "AI/뉴로모픽",
}

// ipcLevel2 labels known IPC main groups.
var ipcLevel2 = map[string]string{
	"H01L21": "반도체 제조공정(전공정)",
	"H01L25": "패키징/어셈블리(후공정)",
	"H01L27": "집적회로 설계",
	"H01L29": "트랜지스터/소자 구조",
	"H01L33": "LED/마이크로LED",
	"H01L51": "OLED 소자",
}

// subgroup is a curated level-3 entry. Order matters: the first match wins.
type subgroup struct {
	code  string
	label string
}

var ipcLevel3 = []subgroup{
	{"H01L21/02", "기판/웨이퍼 처리"},
	{"H01L21/027", "노광/포토리소그래피"},
	{"H01L21/306", "식각(Etch)"},
	{"H01L21/3105", "CMP(화학기계연마)"},
	{"H01L21/44", "금속배선/연결"},
	{"H01L21/768", "다층배선"},
	{"H01L25/065", "3D 스택/HBM"},
	{"H01L25/18", "Hybrid Bonding"},
	{"H01L29/66", "GAA/FinFET 트랜지스터"},
	{"H01L29/78", "MOSFET/나노시트"},
}

// techCategory is one keyword-based technology category.
type techCategory struct {
	name     string
	keywords []string
}

// techCategories is scanned in declared order. A text matching several categories
// is assigned to the first one, so reordering changes results.
var techCategories = []techCategory{
	{"HBM/고대역폭메모리", []string{"HBM", "High Bandwidth Memory", "고대역폭", "wide IO"}},
	{"Hybrid Bonding", []string{"Hybrid Bonding", "하이브리드 본딩", "직접접합", "Cu-Cu bonding"}},
	{"GAA 트랜지스터", []string{"GAA", "Gate-All-Around", "나노시트", "Nanosheet", "MBCFET"}},
	{"EUV 리소그래피", []string{"EUV", "극자외선", "High-NA", "euv lithography"}},
	{"TSV/3D 패키징", []string{"TSV", "실리콘관통전극", "Through Silicon Via", "3D 패키징"}},
	{"Advanced Packaging", []string{"칩렛", "Chiplet", "UCIe", "CoWoS", "FOPLP", "팬아웃"}},
	{"OLED/마이크로LED", []string{"OLED", "유기발광", "MicroLED", "마이크로LED", "μLED"}},
	{"AI 가속기", []string{"NPU", "AI 가속", "뉴로모픽", "neuromorphic", "PIM"}},
}

// loweredCategories holds the keyword table lower-cased once at start-up.
var loweredCategories = lowerCategories(techCategories)

func lowerCategories(in []techCategory) []techCategory {
	out := make([]techCategory, len(in))
	for i, c := range in {
		kws := make([]string, len(c.keywords))
		for j, k := range c.keywords {
			kws[j] = normalizeText(k)
		}
		out[i] = techCategory{name: c.name, keywords: kws}
	}
	return out
}

// TechCategoryNames returns the fixed categories in declared order.
func TechCategoryNames() []string {
	names := make([]string, len(techCategories))
	for i, c := range techCategories {
		names[i] = c.name
	}
	return names
}

// IsTechCategory reports whether name is one of the fixed categories.
func IsTechCategory(name string) bool {
	for _, c := range techCategories {
		if c.name == name {
			return true
		}
	}
	return false
}

// CategoryDefinitions returns the keyword table for display.
func CategoryDefinitions() []schema.CategoryDefinition {
	defs := make([]schema.CategoryDefinition, len(techCategories))
	for i, c := range techCategories {
		kws := make([]string, len(c.keywords))
		copy(kws, c.keywords)
		defs[i] = schema.CategoryDefinition{Name: c.name, Keywords: kws}
	}
	return defs
}
