// Package schedule derives proposed work schedules from a board's tasks and
// recorded time entries. Composition is a pure function of its inputs: it
// performs no I/O, keeps no state between calls, and yields identical output
// for identical input, which is what makes schedules testable.
package schedule
