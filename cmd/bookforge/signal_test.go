package main

// Notes:
// - notifyContext: we only test the observable behavior (context creation,
//   cancellation via stop(), and parent propagation). Actual OS signal
//   delivery is not tested.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context creation and cancellation behavior
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("starts not canceled", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		defer stop()

		select {
		case <-ctx.Done():
			t.Fatal("context should not be canceled initially")
		default:
		}
	})

	t.Run("stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		stop()

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be canceled after stop()")
		}
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be canceled when parent is canceled")
		}
	})
}

// ---------------------------------------------------------------------------
// TestRun_Canceled - A canceled context fails the build
// ---------------------------------------------------------------------------

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := run(ctx, []string{"html", "-i", "/docs", "-o", "/site"}, te.Environment)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	assertContains(t, "stderr", te.stderr.String(), "context canceled")
}
