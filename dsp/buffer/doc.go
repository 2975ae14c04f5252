// Package buffer provides Block, the multichannel audio buffer exchanged
// between a host and a processor for one processing call.
//
// A Block only borrows its channel slices: processors mutate samples in
// place and never change the block's shape. Interleave and Deinterleave
// bridge to the interleaved layouts used by file and device IO.
package buffer
