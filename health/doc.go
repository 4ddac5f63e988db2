// Package health computes derived body metrics (BMI, waist-to-height ratio,
// basal metabolic rate) from profile measurements.
//
// All functions are pure and total: malformed or missing inputs produce the
// "N/A" sentinel [Value], never an error. Division by zero and unknown gender
// are documented sentinel outputs, not failure modes.
//
// # What this package must NOT do
//
//   - Perform I/O or import any other fitgate package.
//   - Interpret units beyond the documented cm/kg/years conventions.
package health
