package schema

// TierDefinition describes one signal tier for display.
type TierDefinition struct {
	Signal    Signal `json:"signal"`
	Condition string `json:"condition"`
	Color     string `json:"color"`
	Blink     bool   `json:"blink"`
}

// CategoryDefinition describes one technology category for display.
type CategoryDefinition struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// TiersRenderModel contains all processed data needed for displaying detection rules.
type TiersRenderModel struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Formula      string               `json:"formula"`
	ThresholdPct float64              `json:"threshold_pct"`
	Tiers        []TierDefinition     `json:"tiers"`
	Categories   []CategoryDefinition `json:"categories"`
	Periods      []string             `json:"periods"`
}
