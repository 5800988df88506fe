// Package utils provides internal helpers shared by the output formats.
// This package is not intended to be imported by external code.
//
// It contains:
//   - Time formatting in the board's local zone
//   - The SIRI response envelope
package utils
