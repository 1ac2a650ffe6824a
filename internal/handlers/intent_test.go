package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlotFromCaption(t *testing.T) {
	tests := []struct {
		caption string
		slot    slot
		rest    string
	}{
		{caption: "", slot: slotMain, rest: ""},
		{caption: "3x4 merah", slot: slotMain, rest: "3x4 merah"},
		{caption: "outfit", slot: slotOutfit, rest: ""},
		{caption: "Baju: kemeja putih", slot: slotOutfit, rest: "kemeja putih"},
		{caption: "referensi - jas hitam", slot: slotOutfit, rest: "jas hitam"},
		{caption: "LOGO sekolah", slot: slotLogo, rest: "sekolah"},
		{caption: "logos everywhere", slot: slotMain, rest: "logos everywhere"},
	}

	for _, tc := range tests {
		t.Run(tc.caption, func(t *testing.T) {
			s, rest := slotFromCaption(tc.caption)
			require.Equal(t, tc.slot, s)
			require.Equal(t, tc.rest, rest)
		})
	}
}

func TestSlotRoundTrip(t *testing.T) {
	for _, s := range albumSlots {
		parsed, ok := parseSlot(s.String())
		require.True(t, ok)
		require.Equal(t, s, parsed)

		back, ok := awaitFor(s).slot()
		require.True(t, ok)
		require.Equal(t, s, back)
	}

	_, ok := awaitOutfitText.slot()
	require.False(t, ok)
	_, ok = parseSlot("banner")
	require.False(t, ok)
}

func TestStateStoreSweep(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	store := newStateStore(func() time.Time { return now })

	store.Update(1, 1, func(st *wizardState) { st.Awaiting = awaitLogo })
	now = now.Add(3 * time.Hour)
	store.Update(2, 2, nil)

	require.Equal(t, 1, store.Sweep(time.Hour))
	require.Equal(t, awaitNone, store.Get(1, 1).Awaiting)
	require.Equal(t, menuMain, store.Get(1, 1).Menu)
}
