// Package scanguard implements the scanguard command-line interface:
// vulnerability scanning, patch synthesis, and scanner health monitoring
// with automatic failover.
package scanguard
