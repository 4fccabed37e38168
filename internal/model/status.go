package model

// Status messages reported by the controller.
const (
	StatusOffline   = "Offline"
	StatusStarting  = "Fetching portfolio..."
	StatusEnabled   = "Enabled"
	StatusAnalyzing = "Analyzing..."
	StatusStartErr  = "Error on start"
)

// BotStatus is the controller state shown to the presentation layer.
type BotStatus struct {
	IsRunning     bool   `json:"is_running"`
	IsAnalyzing   bool   `json:"is_analyzing"`
	StatusMessage string `json:"status_message"`
}

// Dashboard bundles everything a client renders in one poll.
type Dashboard struct {
	Mode      Mode        `json:"mode"`
	Status    BotStatus   `json:"status"`
	Portfolio Portfolio   `json:"portfolio"`
	Insight   *Insight    `json:"insight,omitempty"`
	Price     *PricePoint `json:"price,omitempty"`
	Trades    []Trade     `json:"trades"`
}
