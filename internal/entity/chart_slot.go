package entity

import "fmt"

// SlotID identifies one of the chart upload positions.
type SlotID string

const (
	SlotPrimary SlotID = "primary"
	SlotSector  SlotID = "sector"
	SlotMacro   SlotID = "macro"
	SlotAlt     SlotID = "alt"
)

// ChartSlotDefinition describes an upload position as presented to the user.
type ChartSlotDefinition struct {
	ID          SlotID
	Title       string
	Description string
	Details     string
	Required    bool
}

// slotDefinitions is kept in submission order; request assembly relies on it.
var slotDefinitions = []ChartSlotDefinition{
	{
		ID:          SlotPrimary,
		Title:       "Primary Stock Chart",
		Description: "Upload your main stock chart with technical indicators",
		Details:     "Include: RSI, MACD, Volume, Moving Averages",
		Required:    true,
	},
	{
		ID:          SlotSector,
		Title:       "Sector/Competitors",
		Description: "Upload 2-3 competitor charts or sector ETF",
		Details:     "Examples: If AAPL, include MSFT, GOOGL or XLK",
		Required:    true,
	},
	{
		ID:          SlotMacro,
		Title:       "Market Context",
		Description: "Upload broad market charts: S&P 500, NASDAQ, VIX",
		Details:     "Include: SPY, QQQ, VIX for correlation analysis",
		Required:    true,
	},
	{
		ID:          SlotAlt,
		Title:       "Alternative Assets",
		Description: "Upload Bitcoin, Gold, or Bond charts (Optional)",
		Details:     "Helps identify risk-on vs risk-off sentiment",
		Required:    false,
	},
}

// ChartSlotDefinitions returns the slot definitions in submission order.
func ChartSlotDefinitions() []ChartSlotDefinition {
	out := make([]ChartSlotDefinition, len(slotDefinitions))
	copy(out, slotDefinitions)
	return out
}

// SlotOrder returns the slot identifiers in submission order.
func SlotOrder() []SlotID {
	ids := make([]SlotID, 0, len(slotDefinitions))
	for _, d := range slotDefinitions {
		ids = append(ids, d.ID)
	}
	return ids
}

// RequiredSlots returns the identifiers that must be filled before submission.
func RequiredSlots() []SlotID {
	var ids []SlotID
	for _, d := range slotDefinitions {
		if d.Required {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// LookupSlot returns the definition for id.
func LookupSlot(id SlotID) (ChartSlotDefinition, error) {
	for _, d := range slotDefinitions {
		if d.ID == id {
			return d, nil
		}
	}
	return ChartSlotDefinition{}, fmt.Errorf("unknown chart slot %q", id)
}

// ChartSlot is one upload position and the image currently held in it.
// It lives for a single session and is never persisted.
type ChartSlot struct {
	ChartSlotDefinition
	FileName  string
	MediaType string
	Data      []byte
}

// Filled reports whether the slot holds a non-empty image.
func (s *ChartSlot) Filled() bool {
	return len(s.Data) > 0
}

// Clear empties the slot.
func (s *ChartSlot) Clear() {
	s.FileName = ""
	s.MediaType = ""
	s.Data = nil
}

// NewChartSlots creates one empty slot per definition, in submission order.
func NewChartSlots() []*ChartSlot {
	slots := make([]*ChartSlot, 0, len(slotDefinitions))
	for _, d := range slotDefinitions {
		slots = append(slots, &ChartSlot{ChartSlotDefinition: d})
	}
	return slots
}
