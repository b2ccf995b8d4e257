package macro

import (
	"fmt"
	"math"
)

// Twenty player slots around the map edge, numbered clockwise from the
// top-left corner, five per side. Player two lands in one of the seven
// slots opposite player one: (k+7)..(k+13) mod 20.
const (
	numSlots     = 20
	slotsPerSide = numSlots / 4
	p2Positions  = 7
	p2Offset     = 7
	slotMapSide  = 119.0
	// расстояние от края карты до полосы слотов, в тайлах карты 119x119
	sideTiles = 20
	midTiles  = 30
)

// p2Weights are the percent chances of player two's seven positions.
var p2Weights = [p2Positions]int{10, 16, 16, 16, 16, 16, 10}

// slotBands are the tile ranges along a side, one per slot.
var slotBands = [slotsPerSide][2]int{{30, 41}, {42, 53}, {54, 65}, {66, 77}, {78, 89}}

func tilePercent(tiles int) int {
	return int(math.Round(float64(tiles) / slotMapSide * 100))
}

// slotPosition is the land_position command of a slot; both coordinates are
// left random within the slot's box.
func slotPosition(slot int) string {
	index := slot % slotsPerSide
	if slot >= 2*slotsPerSide {
		index = slotsPerSide - 1 - index
	}
	low, high := tilePercent(slotBands[index][0]), tilePercent(slotBands[index][1])
	side, mid := tilePercent(sideTiles), tilePercent(midTiles)
	endSide, endMid := 100-side, 100-mid
	switch slot / slotsPerSide {
	case 0:
		return fmt.Sprintf("land_position rnd(%d,%d) rnd(%d,%d)", low, high, side, mid)
	case 1:
		return fmt.Sprintf("land_position rnd(%d,%d) rnd(%d,%d)", endMid, endSide, low, high)
	case 2:
		return fmt.Sprintf("land_position rnd(%d,%d) rnd(%d,%d)", low, high, endMid, endSide)
	default:
		return fmt.Sprintf("land_position rnd(%d,%d) rnd(%d,%d)", side, mid, low, high)
	}
}

func slotLabels([]float64) ([]string, error) {
	lines := make([]string, 0, numSlots+p2Positions+4)
	lines = append(lines, "start_random")
	for k := range numSlots {
		lines = append(lines, fmt.Sprintf("percent_chance 5 #define P1_SLOT_%d", k))
	}
	lines = append(lines, "end_random", "start_random")
	for j, w := range p2Weights {
		lines = append(lines, fmt.Sprintf("percent_chance %d #define P2_POS_%d", w, j))
	}
	return append(lines, "end_random"), nil
}

func slotP1([]float64) ([]string, error) {
	lines := make([]string, 0, 2*numSlots+1)
	delim := "if"
	for k := range numSlots {
		lines = append(lines, fmt.Sprintf("%s P1_SLOT_%d", delim, k), slotPosition(k))
		delim = "elseif"
	}
	return append(lines, "endif"), nil
}

func slotP2([]float64) ([]string, error) {
	var lines []string
	outer := "if"
	for k := range numSlots {
		lines = append(lines, fmt.Sprintf("%s P1_SLOT_%d", outer, k))
		inner := "if"
		for j := range p2Positions {
			lines = append(lines,
				fmt.Sprintf("%s P2_POS_%d", inner, j),
				slotPosition((k+p2Offset+j)%numSlots))
			inner = "elseif"
		}
		lines = append(lines, "endif")
		outer = "elseif"
	}
	return append(lines, "endif"), nil
}
