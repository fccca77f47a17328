package domain

import "time"

// CooldownTable holds the escalating post-breeding waiting periods. The index
// saturates at the last entry, so a cue's cooldown never exceeds seven days
// no matter how many times it has bred.
var CooldownTable = [14]time.Duration{
	1 * time.Minute,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
	1 * time.Hour,
	2 * time.Hour,
	4 * time.Hour,
	8 * time.Hour,
	16 * time.Hour,
	24 * time.Hour,
	2 * 24 * time.Hour,
	4 * 24 * time.Hour,
	7 * 24 * time.Hour,
}

// LastCooldownIndex is the saturation point of CooldownTable.
const LastCooldownIndex = uint8(len(CooldownTable) - 1)

// DefaultTickInterval is the assumed wall-clock length of one tick of the
// external time counter. Cooldown scheduling is expressed in whole ticks;
// callers must tolerate this granularity.
const DefaultTickInterval = 15 * time.Second

// CooldownTicks converts the table entry at index into a whole number of
// ticks, rounding up so a cooldown never undershoots its duration. Indexes
// past the end of the table are clamped.
func CooldownTicks(index uint8, tickInterval time.Duration) uint64 {
	if index > LastCooldownIndex {
		index = LastCooldownIndex
	}
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	d := CooldownTable[index]
	return uint64((d + tickInterval - 1) / tickInterval)
}

// Ready reports whether the cue is out of cooldown at the given tick. A
// never-cooled cue (end tick zero) is always ready.
func (c Cue) Ready(nowTick uint64) bool {
	return c.CooldownEndTick <= nowTick
}

// TriggerCooldown places the cue into its next cooldown period starting at
// nowTick and advances the escalation index, saturating at the table's end.
func TriggerCooldown(c *Cue, nowTick uint64, tickInterval time.Duration) {
	c.CooldownEndTick = nowTick + CooldownTicks(c.CooldownIndex, tickInterval)
	if c.CooldownIndex < LastCooldownIndex {
		c.CooldownIndex++
	}
}
