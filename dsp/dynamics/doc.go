// Package dynamics provides the real-time feed-forward compressor engine.
//
// Compressor tracks each channel's level with a one-pole peak follower
// (separate attack and release time constants) and feeds the estimate
// through a hard-knee static characteristic:
//
//	below threshold: 0 dB reduction
//	above threshold: reduction = excess - excess/ratio
//
// Parameters arrive as a params.ParameterSet snapshot once per block and
// apply to every sample of that block. Process never allocates, never
// blocks and never fails: out-of-range parameters are clamped and invalid
// state degrades to unity gain.
//
// Build with -tags fastmath to replace the per-sample log/exp with the
// algo-approx approximations.
package dynamics
