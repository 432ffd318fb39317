// Package sidecar supervises the external sensor-data provider process.
//
// The sidecar binary samples hardware sensors (CPU/GPU temperatures, power
// draw, fan speeds) that require elevated access, and emits one JSON object
// per line on stdout at a fixed reporting interval. This package owns the
// full lifecycle of that process:
//
//   - Resolver locates the sidecar executable (packaged resources, a
//     development tree, or working-directory fallbacks).
//   - Supervisor spawns the process, captures its stdout, and runs a reader
//     goroutine that decodes each line into the shared State.
//   - Watchdog polls the State and drives a bounded restart policy when the
//     process dies.
//   - Start ties the pieces together and returns a Handle whose Shutdown
//     joins all background goroutines deterministically.
//
// The State store is the only shared mutable resource. Consumers (the HTTP
// API, the stats merge) read it through non-blocking accessors that always
// return the latest known values and never fail.
package sidecar
