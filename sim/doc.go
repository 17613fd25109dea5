// Package sim holds what every package of the ocean core shares: the error
// taxonomy and run-level error code (errors.go), and deterministic,
// decomposition-independent random streams (rng.go).
//
// # Reading Guide
//
// Start with these packages to understand the time-integration core:
//   - sim/clock: simulated time, the stop condition and named alarms
//   - sim/block: one mesh partition with its double-buffered state
//   - sim/ocean: block initialization, the barotropic split and the step loop
//
// # Architecture
//
// The core defines collaborator interfaces; implementations live in
// sub-packages:
//   - sim/mesh/: topology and geometry, synthetic channel, decomposition
//   - sim/comm/: collectives for one serial rank or in-process rank groups
//   - sim/process/: reference diagnostics, forcing and time integrators
//   - sim/stream/: output and restart frames, forcing input, restart marker
//   - sim/config/: run configuration and validation
//   - sim/trace/: timers, step records and statistics reports
//
// sim/process registers its collaborators via an init() function that sets
// the factory variables of sim/ocean (NewDiagnosticSolverFunc,
// NewTimeIntegratorFunc and friends).
package sim
