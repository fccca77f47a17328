package domain

import (
	"testing"
	"time"
)

func TestCooldownTableMonotonic(t *testing.T) {
	if CooldownTable[0] != time.Minute {
		t.Fatalf("expected first cooldown of one minute, got %v", CooldownTable[0])
	}
	if CooldownTable[LastCooldownIndex] != 7*24*time.Hour {
		t.Fatalf("expected final cooldown of seven days, got %v", CooldownTable[LastCooldownIndex])
	}
	for i := 1; i < len(CooldownTable); i++ {
		if CooldownTable[i] <= CooldownTable[i-1] {
			t.Fatalf("cooldown table not strictly increasing at %d: %v <= %v", i, CooldownTable[i], CooldownTable[i-1])
		}
	}
}

func TestCooldownTicksRoundsUp(t *testing.T) {
	// One minute at 15s ticks is exactly 4 ticks.
	if got := CooldownTicks(0, 15*time.Second); got != 4 {
		t.Fatalf("expected 4 ticks, got %d", got)
	}
	// One minute at 25s ticks needs 3 ticks (2 would under-serve).
	if got := CooldownTicks(0, 25*time.Second); got != 3 {
		t.Fatalf("expected 3 ticks, got %d", got)
	}
	// Sub-tick durations still cost one full tick.
	if got := CooldownTicks(0, 2*time.Hour); got != 1 {
		t.Fatalf("expected 1 tick, got %d", got)
	}
}

func TestCooldownTicksClampsIndex(t *testing.T) {
	over := CooldownTicks(200, 15*time.Second)
	last := CooldownTicks(LastCooldownIndex, 15*time.Second)
	if over != last {
		t.Fatalf("out-of-range index should clamp to final entry: %d != %d", over, last)
	}
}

func TestTriggerCooldownEscalates(t *testing.T) {
	cue := Cue{ID: 1}
	TriggerCooldown(&cue, 100, 15*time.Second)
	if cue.CooldownIndex != 1 {
		t.Fatalf("expected index 1 after first trigger, got %d", cue.CooldownIndex)
	}
	if cue.CooldownEndTick != 100+CooldownTicks(0, 15*time.Second) {
		t.Fatalf("unexpected end tick %d", cue.CooldownEndTick)
	}

	for i := 0; i < 30; i++ {
		TriggerCooldown(&cue, cue.CooldownEndTick, 15*time.Second)
	}
	if cue.CooldownIndex != LastCooldownIndex {
		t.Fatalf("index should saturate at %d, got %d", LastCooldownIndex, cue.CooldownIndex)
	}
	before := cue.CooldownEndTick
	TriggerCooldown(&cue, before, 15*time.Second)
	if cue.CooldownEndTick-before != CooldownTicks(LastCooldownIndex, 15*time.Second) {
		t.Fatalf("saturated trigger should keep using the final duration")
	}
}

func TestReadyBoundary(t *testing.T) {
	cue := Cue{CooldownEndTick: 50}
	if cue.Ready(49) {
		t.Fatalf("cue should not be ready one tick early")
	}
	if !cue.Ready(50) {
		t.Fatalf("cue should be ready exactly at its end tick")
	}
	if !cue.Ready(51) {
		t.Fatalf("cue should stay ready after its end tick")
	}
}

func TestIsGenesisAndParents(t *testing.T) {
	g := Cue{ID: 1}
	if !g.IsGenesis() {
		t.Fatalf("parentless cue must be genesis")
	}
	c := Cue{ID: 4, Parent1: 1, Parent2: 2, Parent3: 3}
	if c.IsGenesis() {
		t.Fatalf("cue with lineage must not be genesis")
	}
	if c.Parents() != [3]uint64{1, 2, 3} {
		t.Fatalf("unexpected parents %v", c.Parents())
	}
}
