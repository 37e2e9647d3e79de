// Package core exposes a small stable API for embedding scanguard's
// vulnerability scanning in other programs.
package core
