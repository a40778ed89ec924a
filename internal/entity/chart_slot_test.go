package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotOrder(t *testing.T) {
	assert.Equal(t, []SlotID{SlotPrimary, SlotSector, SlotMacro, SlotAlt}, SlotOrder())
	assert.Equal(t, []SlotID{SlotPrimary, SlotSector, SlotMacro}, RequiredSlots())
}

func TestChartSlotDefinitionsIsACopy(t *testing.T) {
	defs := ChartSlotDefinitions()
	defs[0].Required = false

	def, err := LookupSlot(SlotPrimary)
	require.NoError(t, err)
	assert.True(t, def.Required)
}

func TestLookupSlotUnknown(t *testing.T) {
	_, err := LookupSlot("volume")
	assert.Error(t, err)
}

func TestChartSlotLifecycle(t *testing.T) {
	slots := NewChartSlots()
	require.Len(t, slots, 4)

	s := slots[0]
	assert.False(t, s.Filled())

	s.FileName = "aapl.png"
	s.MediaType = "image/png"
	s.Data = []byte{0x89}
	assert.True(t, s.Filled())

	s.Clear()
	assert.False(t, s.Filled())
	assert.Empty(t, s.FileName)
	assert.Equal(t, SlotPrimary, s.ID)
}
