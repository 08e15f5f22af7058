// Package metrics measures styled text for the layout engine.
//
// The layout engine only depends on the Provider contract:
//
//	type Provider interface {
//	    Measure(text string, style Style) Size
//	    LineHeight(style Style) float64
//	}
//
// Providers must be deterministic: the same text and style always produce
// the same size. Layout results and caches rely on that.
//
// Three implementations ship with the package:
//
//   - FaceProvider measures with golang.org/x/image font faces. Faces are
//     registered per family; unknown families use the fallback face
//     (basicfont.Face7x13 unless configured otherwise). Widths scale with
//     Style.Font.Size relative to the face's nominal height.
//   - CellProvider measures terminal cells using go-runewidth, so wide
//     (East Asian) characters take two cells and combining marks none.
//   - Cache memoises another provider, keyed by text and style, with LRU
//     eviction.
package metrics
