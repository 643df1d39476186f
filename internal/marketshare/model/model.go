package model

// ColAbsent marks an optional column that was not found in the sheet.
const ColAbsent = -1

// ColumnMap: resolved zero-based column indices for one input file.
// Computed once per upload, immutable afterwards.
type ColumnMap struct {
	Brand              int
	MarketShare        int
	TotalSales         int
	AvgPrice           int
	DaysOnMarket       int
	PricePerSqft       int // ColAbsent unless detected
	ClosedListRatio    int // ColAbsent unless detected
	TotalOffices       int
	ContributingAgents int
}

// BrokerageRecord is one accepted ranking row.
type BrokerageRecord struct {
	Brand       string  `json:"brand"`
	MarketShare float64 `json:"marketShare"` // percentage, 1dp
}

// MetricsSnapshot: side-channel metrics for the subject brand's row.
// Optional metrics stay zero when their column is absent or the value
// did not parse.
type MetricsSnapshot struct {
	TotalSales         int     `json:"totalSales"`
	AveragePrice       float64 `json:"averagePrice"`
	DaysOnMarket       float64 `json:"daysOnMarket"`
	PricePerSqft       float64 `json:"pricePerSqft,omitempty"`
	ClosedListRatio    float64 `json:"closedListRatio,omitempty"`
	TotalOffices       int     `json:"totalOffices"`
	ContributingAgents int     `json:"contributingAgents"`
}

// ChartData: parallel label/value sequences, values non-increasing.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Derived summary metrics computed from the full sorted list.
type Derived struct {
	LeaderShare       float64 `json:"leaderShare"`
	RunnerUpShare     float64 `json:"runnerUpShare"`
	Gap               float64 `json:"gap"`
	Top3Concentration float64 `json:"top3Concentration"`
}

// Result of the ranking pass. Records holds the FULL sorted list so
// downstream can truncate at other N values (top-5 + "All Others" view).
type Result struct {
	Records []BrokerageRecord `json:"records"`
	Top     ChartData         `json:"top"`
	Full    ChartData         `json:"full"`
	Derived Derived           `json:"derived"`
}

// Options for one analysis run.
type Options struct {
	Subject      string // case-insensitive token locating the subject row
	SubjectLabel string // canonical display label for the subject brand
	TopN         int
}

type Insights struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Summary     []string `json:"summary"`
}

// AdditionalMetrics is the display-formatted snapshot consumed by the
// presentation layer; optional fields are omitted when not detected.
type AdditionalMetrics struct {
	TotalSales         int     `json:"totalSales"`
	AveragePrice       string  `json:"averagePrice"`
	DaysOnMarket       float64 `json:"daysOnMarket"`
	TotalOffices       int     `json:"totalOffices"`
	ContributingAgents int     `json:"contributingAgents"`
	PricePerSqft       string  `json:"pricePerSqft,omitempty"`
	ClosedListRatio    string  `json:"closedListRatio,omitempty"`
}

// Report is the full response body for POST /analyze.
type Report struct {
	ProcessedData     ChartData         `json:"processedData"`
	FullData          ChartData         `json:"fullData"`
	Insights          Insights          `json:"insights"`
	AdditionalMetrics AdditionalMetrics `json:"additionalMetrics"`
	Derived           Derived           `json:"derived"`
}
