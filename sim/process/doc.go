// Package process holds the reference collaborators of the ocean core: the
// diagnostic solve, Gent-McWilliams Bolus velocity, least-squares vector
// reconstruction, surface forcing, the unsplit and split-explicit time
// integrators, and the analytic cold-start state.
//
// These are deliberately simple and column-local: every update of an edge or
// cell reads only that column and its immediate neighbours' geometry, so a
// block can advance without halo exchange and results are independent of
// the decomposition. They are not production numerics.
package process
