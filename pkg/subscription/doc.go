// Package subscription implements the bidirectional monitor-subscription
// index: a multimap between monitor IP addresses and the stream IDs
// they follow. Edges carry no metadata; the monitor's UDP fan-out
// destination is kept by the router, not by the index.
//
// The index supports the operations the router needs: idempotent
// insert, delete by pair, delete all edges for a monitor (eviction),
// and enumeration from either side. All operations are O(1) amortized
// except enumeration, which is O(k) in the number of matches.
package subscription
