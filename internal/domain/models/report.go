package models

// PeriodSummary aggregates the sales of one period.
type PeriodSummary struct {
	Period   string  `json:"period"`
	Quantity float64 `json:"qty_kg"`
	Revenue  float64 `json:"sp"`
	Cost     float64 `json:"cp"`
	Freight  float64 `json:"freight"`
	Profit   float64 `json:"pl"`
	Sales    int     `json:"sales"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Totals  PeriodSummary   `json:"totals"`
	Monthly []PeriodSummary `json:"monthly"`
	Current PeriodSummary   `json:"current"`
	Latest  []Sale          `json:"latest"`
}

// ClientSummary aggregates the sales of one client.
type ClientSummary struct {
	ClientName string  `json:"client_name"`
	Quantity   float64 `json:"qty_kg"`
	Revenue    float64 `json:"sp"`
	Cost       float64 `json:"cp"`
	Profit     float64 `json:"pl"`
}

// ClientReport lists every client plus the grand totals.
type ClientReport struct {
	Rows   []ClientSummary `json:"rows"`
	Totals ClientSummary   `json:"totals"`
}

// ExportLine is one sale item flattened for spreadsheets.
type ExportLine struct {
	Date       string
	ClientName string
	Quantity   float64
	CostRate   float64
	SellRate   float64
	Freight    float64
	Revenue    float64
	Cost       float64
	Profit     float64
}
