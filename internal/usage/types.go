package usage

// UsageData represents the root structure stored in persistence.
type UsageData struct {
	Version   string `json:"version"`
	Aggregate Stats  `json:"aggregate"`
}

// Stats holds counters broken down by question mode and by model.
type Stats struct {
	Calls   int64                  `json:"calls"`
	Total   TokenCounts            `json:"total"`
	ByMode  map[string]TokenCounts `json:"by_mode"` // plain, augmented
	ByModel map[string]TokenCounts `json:"by_model"`
}

// TokenCounts holds input/output sums.
type TokenCounts struct {
	Calls  int64 `json:"calls"`
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Calls++
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}
