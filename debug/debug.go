// Package debug provides env-gated debug logging for the core engines.
// Set TT_DEBUG_DIFF, TT_DEBUG_PATCH or TT_DEBUG_RESOLVE to a truthy value.
package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Diff    bool
	Patch   bool
	Resolve bool
}

var d *debug

func init() {
	d = &debug{}
	d.Diff = boolEnv("TT_DEBUG_DIFF")
	d.Patch = boolEnv("TT_DEBUG_PATCH")
	d.Resolve = boolEnv("TT_DEBUG_RESOLVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Diff() bool {
	return d.Diff
}
func Patch() bool {
	return d.Patch
}
func Resolve() bool {
	return d.Resolve
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
