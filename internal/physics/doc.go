// Package physics evaluates closed-form, weak-field relativistic observables
// for isolated massive bodies.
//
// The package is organised around three pieces:
//
//   - [Constants]: the c and G bundle an [Engine] is built with
//   - [Body] and [Scene]: immutable body records and their ordered collection
//   - [Engine]: pure formulas selected through an [Observable]
//
// A [Sampler] draws uniform point clouds inside a body's bounding box for
// visualization. It takes an injected random source so runs are reproducible.
//
// # Errors
//
// Formula failures are reported as [*DomainError] and match [ErrDomain].
// Malformed input (non-positive constants, inverted bounds, empty scenes,
// unknown selectors) is reported as [*ConfigError] and matches [ErrConfig].
// No formula returns NaN or Inf without an error.
//
// # Conventions
//
// [Engine.TimeDilation] keeps the sign convention sqrt(1 - 2*phi/c^2) with a
// negative potential, so it is always greater than one. [Engine.DopplerFactor]
// defaults to beta = v/c; [DopplerVerbatim] selects the c/v form, which is
// only defined for speeds above c.
//
//	eng, _ := physics.NewEngine(physics.DefaultConstants())
//	d, err := eng.Evaluate(physics.PulseDuration, body)
package physics
