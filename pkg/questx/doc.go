// Package questx derives display values from quest step data: what kind of
// requirement a step has, how far along a quest is, and which colour band
// that progress falls into.
//
// Everything here is pure. Classification and aggregates are recomputed on
// demand and never stored, so they cannot drift from the step values they
// describe.
package questx
