package gwaveaux

import (
	"context"
	"testing"
	"time"

	"github.com/soypat/gwave"
	"github.com/soypat/gwave/app"
)

func TestFramePacer(t *testing.T) {
	if framePacer(0) != nil {
		t.Error("zero FPS must use vertical sync")
	}
	pace := framePacer(500)
	if pace == nil {
		t.Fatal("positive FPS must return a pacer")
	}
	defer pace.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := pace.Next(ctx); err != nil {
			t.Fatal(err)
		}
	}
}

func TestUIInvalidFPS(t *testing.T) {
	a, err := app.New(gwave.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = UI(a, UIConfig{FPS: -1})
	if err == nil {
		t.Error("expected error for negative FPS")
	}
}
