package algo

import (
	"time"

	"github.com/semiconip/patentspike/schema"
)

// fixedNow anchors every time-dependent test.
var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// daysAgo formats the publication date n days before fixedNow.
func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format("20060102")
}

// patent builds a record with the fields the analyzer reads.
func patent(title, openDate, ipc string) schema.Patent {
	return schema.Patent{
		ApplicationNumber: "10-" + openDate + "-" + title,
		InventionTitle:    title,
		OpenDate:          openDate,
		IPCNumber:         ipc,
	}
}

// series returns recent publications in the last month followed by older ones
// spread across the eleven months before it.
func series(title string, recent, older int) []schema.Patent {
	var out []schema.Patent
	for i := range recent {
		out = append(out, patent(title, daysAgo(1+i*3), "H01L25/065"))
	}
	step := 0
	if older > 1 {
		step = 300 / (older - 1)
	}
	for i := range older {
		out = append(out, patent(title, daysAgo(45+i*step), "H01L25/065"))
	}
	return out
}
