//go:build !satdebug

package sat

const debugChecksEnabled = false
