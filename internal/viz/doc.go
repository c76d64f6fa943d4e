// Package viz provides rendering sinks for experiment frames.
//
// A [Sink] accepts a point cloud paired with one scalar per point:
//
//   - [Terminal]: braille scatter through a rotating [Camera], tinted per cell
//   - [SVG]: orthographic X/Y scatter with a gradient colorbar
//
// Colors come from a [Colormap] interpolated in Lab space; NaN values, which
// mark bodies whose observable could not be computed, render gray.
package viz
