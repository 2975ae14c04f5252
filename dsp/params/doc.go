// Package params holds the compressor's control parameters.
//
// ParameterSet is the plain value snapshot consumed by the engine once per
// block. Store is the shared, lock-free home of the current values: a
// control context (UI, automation, network) writes while the audio context
// reads, and neither ever waits for the other.
package params
