// Package utils provides small path and file helpers shared across chuck-hq.
package utils
