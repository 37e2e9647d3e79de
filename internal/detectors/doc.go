// Package detectors holds the fixed battery of vulnerability detectors:
// signature-based regex matchers for SQL injection, XSS, authentication
// bypass and supply-chain patterns, plus a behavioral keyword matcher that
// flags attempts to tamper with the scanner configuration itself.
package detectors
