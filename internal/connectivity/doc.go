// Package connectivity turns a raw transport signal into the single
// online/offline state the sync queue manager reacts to.
//
// A [Provider] reports reachability: [HTTPProbe] pings the record server's
// health endpoint, [ManualProvider] is flipped by hand (tests, --offline).
// A [Monitor] sits between a provider and its listeners and forwards only
// real edges, so a repeated "online" never causes a second drain.
package connectivity
