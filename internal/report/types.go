package report

// Indicator is a named scalar shown in the top row of the report.
type Indicator struct {
	Value float64 `json:"value"`
	Title string  `json:"title"`
}

// PieChart holds one categorical distribution: parallel label/value
// slices plus the text mode used when the slices are drawn.
type PieChart struct {
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	TextInfo string    `json:"textinfo"`
}

// GridRef places a trace into a cell of the figure grid, zero-indexed.
type GridRef struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// TraceTitle is the nested title object of an indicator trace.
type TraceTitle struct {
	Text string `json:"text"`
}

// IndicatorTrace is a single big-number widget in the figure.
type IndicatorTrace struct {
	Type   string     `json:"type"`
	Mode   string     `json:"mode"`
	Value  float64    `json:"value"`
	Title  TraceTitle `json:"title"`
	Domain GridRef    `json:"domain"`
}

// PieTrace is a single pie widget in the figure.
type PieTrace struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	TextInfo string    `json:"textinfo"`
	Domain   GridRef   `json:"domain"`
}

// Grid describes the subplot grid of the figure layout.
type Grid struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Pattern string `json:"pattern"`
}

// Annotation is a free-floating text label on the figure; the report uses
// one as the as-of-date caption beneath the grid.
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	ShowArrow bool    `json:"showarrow"`
}

// Layout holds the figure-level presentation settings.
type Layout struct {
	Grid        Grid         `json:"grid"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	ShowLegend  bool         `json:"showlegend"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Figure is the composed report chart, serializable straight into a
// Plotly-compatible {data, layout} document.
type Figure struct {
	Data   []interface{} `json:"data"`
	Layout Layout        `json:"layout"`
}
