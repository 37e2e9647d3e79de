// Package config loads the scanguard YAML configuration: scanner
// identities, failover threshold, probe endpoints, and scan scope.
// Precedence is CLI flag > repo-local file > global file.
package config
