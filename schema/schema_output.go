package schema

// EnrichedSpikeAlert adds presentation data to a SpikeAlert.
type EnrichedSpikeAlert struct {
	Rank    int    `json:"rank"`
	Company string `json:"company"`
	SpikeAlert
}

// EnrichSpikes adds rank and company to a list of alerts.
func EnrichSpikes(company string, alerts []SpikeAlert) []EnrichedSpikeAlert {
	output := make([]EnrichedSpikeAlert, len(alerts))
	for i, a := range alerts {
		output[i] = EnrichedSpikeAlert{
			Rank:       i + 1,
			Company:    company,
			SpikeAlert: a,
		}
	}
	return output
}

// CountSignal returns how many alerts carry the given tier.
func CountSignal(alerts []SpikeAlert, s Signal) int {
	n := 0
	for _, a := range alerts {
		if a.Signal == s {
			n++
		}
	}
	return n
}

// ActionableSpikes keeps Strategic Spike and Emerging Signal alerts in order.
func ActionableSpikes(alerts []SpikeAlert) []SpikeAlert {
	var out []SpikeAlert
	for _, a := range alerts {
		if a.Signal.IsActionable() {
			out = append(out, a)
		}
	}
	return out
}

// ClassifiedPatent is a patent with its derived technology labels, used by the patent list.
type ClassifiedPatent struct {
	Company      string  `json:"company"`
	TechCategory string  `json:"tech_category"`
	IPC          IPCNode `json:"ipc"`
	Patent
}
