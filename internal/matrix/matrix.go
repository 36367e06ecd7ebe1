// Package matrix converts between linear key positions and (row, col)
// coordinates for a fixed-width key matrix. The column count comes from
// the firmware devicetree and is configuration, not protocol: the IPC
// client itself never translates between the two addressing modes.
package matrix

import "fmt"

// RC maps a linear position onto (row, col) for the given column count.
func RC(position, columns int) (row, col int, err error) {
	if columns <= 0 {
		return 0, 0, fmt.Errorf("matrix columns must be > 0, got %d", columns)
	}
	if position < 0 {
		return 0, 0, fmt.Errorf("matrix position must be >= 0, got %d", position)
	}
	return position / columns, position % columns, nil
}

// Position maps (row, col) onto a linear position for the given column count.
func Position(row, col, columns int) (int, error) {
	if columns <= 0 {
		return 0, fmt.Errorf("matrix columns must be > 0, got %d", columns)
	}
	if row < 0 || col < 0 {
		return 0, fmt.Errorf("matrix row/col must be >= 0, got row=%d col=%d", row, col)
	}
	if col >= columns {
		return 0, fmt.Errorf("matrix col %d out of range for %d columns", col, columns)
	}
	return row*columns + col, nil
}
