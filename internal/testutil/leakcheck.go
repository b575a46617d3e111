// Package testutil provides testing utilities shared across TuneWave packages.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// IgnoreFyneGoroutines returns goleak options for goroutines fyne keeps alive
// for the whole process.
func IgnoreFyneGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("fyne.io/fyne/v2/internal/animation.(*Runner).runAnimations"),
		goleak.IgnoreAnyFunction("fyne.io/fyne/v2"),
	}
}

// NoNewLeaks snapshots the running goroutines and returns a check, meant to be
// deferred, that fails on any goroutine started since that is not fyne's own.
//
//	defer testutil.NoNewLeaks(t)()
func NoNewLeaks(t *testing.T) func() {
	t.Helper()
	opts := append(IgnoreFyneGoroutines(), goleak.IgnoreCurrent())
	return func() {
		t.Helper()
		VerifyNoLeaks(t, opts...)
	}
}
