// Package engine runs the vulnerability detector battery over source text
// and whole trees, synthesizes remediation patches for findings it
// recognizes, and exposes the on-demand alert stream for the scanner
// configuration itself.
package engine
