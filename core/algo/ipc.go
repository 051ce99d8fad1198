package algo

import (
	"regexp"
	"strings"

	"github.com/semiconip/patentspike/schema"
)

var (
	level1Pattern = regexp.MustCompile(`^([A-Z]\d+[A-Z]+)`)
	level2Pattern = regexp.MustCompile(`^([A-Z]\d+[A-Z]+\d+)`)
)

// ClassifyIPC maps a raw IPC string to its three-level hierarchy.
// Only the first semicolon-delimited code is used, trimmed and upper-cased. Unknown level-1 and level-2 prefixes
// pass through unchanged; a code with no recognizable prefix and any unlisted subgroup
// get the catch-all label.
func ClassifyIPC(code string) schema.IPCNode {
	ipc := strings.ToUpper(schema.FirstIPC(code))
	if ipc == "" {
		return schema.IPCNode{Level1: schema.OtherLabel, Level2: schema.OtherLabel, Level3: schema.OtherLabel}
	}
	return schema.IPCNode{
		Level1: lookupLevel(level1Pattern, ipcLevel1, ipc),
		Level2: lookupLevel(level2Pattern, ipcLevel2, ipc),
		Level3: lookupSubgroup(ipc),
	}
}

func lookupLevel(pattern *regexp.Regexp, labels map[string]string, ipc string) string {
	m := pattern.FindStringSubmatch(ipc)
	if m == nil {
		return schema.OtherLabel
	}
	if label, ok := labels[m[1]]; ok {
		return label
	}
	return m[1]
}

func lookupSubgroup(ipc string) string {
	for _, sg := range ipcLevel3 {
		if strings.HasPrefix(ipc, strings.ReplaceAll(sg.code, "/", "")) || strings.Contains(ipc, sg.code) {
			return sg.label
		}
	}
	return schema.OtherLabel
}
