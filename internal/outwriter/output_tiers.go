package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// WriteTiers outputs the detection formula, the signal tiers and the technology taxonomy.
func WriteTiers(model schema.TiersRenderModel, cfg *contract.Config) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, model) },
		csvHeader: []string{"signal", "condition", "color", "blink"},
		csvRows: func(w *csv.Writer) error {
			for _, t := range model.Tiers {
				if err := w.Write([]string{string(t.Signal), t.Condition, t.Color, strconv.FormatBool(t.Blink)}); err != nil {
					return err
				}
			}
			return nil
		},
		text: func(w io.Writer) error { return writeTiersText(w, model, cfg) },
	})
}

func writeTiersText(w io.Writer, model schema.TiersRenderModel, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n  %s\n\n", model.Title, model.Description, model.Formula); err != nil {
		return err
	}
	tiers := newTable(w, "Signal", "Condition", "Color", "Blink")
	var data [][]string
	for _, t := range model.Tiers {
		blink := ""
		if t.Blink {
			blink = "yes"
		}
		data = append(data, []string{signalLabel(cfg, t.Signal), t.Condition, t.Color, blink})
	}
	if err := renderTable(tiers, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	cats := newTable(w, "Category", "Keywords")
	data = nil
	for _, c := range model.Categories {
		data = append(data, []string{c.Name, strings.Join(c.Keywords, ", ")})
	}
	if err := renderTable(cats, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Periods: %s\n", strings.Join(model.Periods, ", "))
	return err
}
