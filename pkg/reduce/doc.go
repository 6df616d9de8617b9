// Package reduce drives read reduction over a coordinate-sorted read stream.
//
// An Engine filters and normalizes each read, routes it to the consensus window of its
// read group, and writes the resulting reads to a Sink in coordinate order across all
// read groups. Engines are single threaded; Close must run before the engine is
// discarded or buffered coverage is lost. Run guarantees that.
package reduce
