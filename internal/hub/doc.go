// Package hub implements the live connection registry, the per-match
// subscription index, and the broadcast router using the actor pattern.
//
// A single goroutine owns both maps and consumes a command channel, so no
// mutexes guard registry or subscription state; correctness comes from
// interleaving order alone. Per-connection writer goroutines absorb slow
// peers, and a heartbeat sweep evicts connections that stop answering
// pings within two intervals.
package hub
