// Package ocean is the time-integration core of the split-explicit ocean
// model: block initialization, the barotropic/baroclinic split of the
// initial velocity, global statistics, and the step driver.
//
// # Reading Guide
//
//   - init.go: the once-per-run block bootstrap (InitializeBlock)
//   - split.go: barotropic/baroclinic decomposition of the initial velocity
//   - driver.go: start-up sequence and the main step loop
//   - diagnostics.go: alarm-driven global statistics via collective reductions
//
// # Collaborators
//
// Tendency kernels, the diagnostic solve, vector reconstruction, Bolus
// velocity, surface forcing and stream I/O are external. This package owns
// their interfaces (collaborators.go); reference implementations live in
// sim/process and sim/stream. sim/process registers itself through the
// package-level factory variables in its init(), the same way an importer
// would plug in production kernels.
package ocean
