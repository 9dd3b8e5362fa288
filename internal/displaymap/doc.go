// Package displaymap converts buffer coordinates to screen coordinates
// through three composable layers: FoldMap hides collapsed regions, WrapMap
// splits long lines into visual rows, and TabMap expands tabs for display.
//
// # Coordinate systems
//
//   - BufferPoint: position in the raw buffer (line, column in chars)
//   - FoldPoint: position after folding (some lines hidden)
//   - WrapPoint: position after soft wrapping (one fold-space line maps to
//     one or more wrap rows)
//   - DisplayPoint: final screen position
//
// # Usage
//
//	m := displaymap.NewMap(80, 4)
//	m.Update(buf.LineCount(), regions, buf.LineText)
//	snap := m.Snapshot()
//	dp := snap.ToDisplayPoint(displaymap.BufferPoint{Row: 10, Col: 3})
package displaymap
