package systems

import (
	"math"
	"time"

	"github.com/pthm-cable/roam/components"
)

// fall integrates gravity for an airborne pet. It returns true while the pet is
// still in the air; on reaching the floor it lands the pet and returns false.
func (b *Behavior) fall(p PetRef, floor float64, out *Outcome) bool {
	m := p.Motion
	if !m.Mode.Airborne() {
		return false
	}

	if p.Pos.Y < floor {
		p.Vel.Y = min(p.Vel.Y+1, b.params.TerminalVelocity)
		p.Pos.Y += float64(p.Vel.Y)

		// Horizontal speed carries over as inertia
		p.Vel.X = min(p.Vel.X, b.params.TerminalVelocity)
		p.Pos.X += float64(p.Vel.X)

		m.AirTicks++
		return true
	}

	b.land(p, out)
	return false
}

func (b *Behavior) land(p PetRef, out *Outcome) {
	m := p.Motion
	p.Vel.Y = 0
	p.Vel.X = b.params.WalkSpeed * m.Facing
	m.Mode = components.ModeWalking
	m.DelayUntil = time.Time{}

	out.Events |= EventLanded
	out.AirTicks = m.AirTicks
	m.AirTicks = 0
}

// walk moves a grounded pet along its floor with a sinusoidal bob, then rolls
// for at most one random transition. A delayed pet stays put until its deadline.
func (b *Behavior) walk(p PetRef, floor float64, rng Rand, out *Outcome) {
	m := p.Motion
	if m.Mode == components.ModeDelayed {
		if b.clock.Now().Before(m.DelayUntil) {
			return
		}
		m.Mode = components.ModeWalking
		m.DelayUntil = time.Time{}
	}

	m.WalkCycle++
	p.Pos.X += float64(p.Vel.X)

	// The bob may dip below the floor; containment clamps it back.
	offset := b.params.BobAmplitude * math.Sin(float64(m.WalkCycle)*b.params.BobFrequency)
	p.Pos.Y = math.Floor(floor + offset)

	switch {
	case rng.Float64() < FlipChance:
		b.flip(p, out)
	case rng.Float64() < DelayChance:
		b.delay(p, rng, out)
	case rng.Float64() < JumpChance:
		b.jump(p, rng, out)
	}
}

// flip reverses direction and mirrors the sprite.
func (b *Behavior) flip(p PetRef, out *Outcome) {
	p.Motion.Facing = -p.Motion.Facing
	p.Vel.X = -p.Vel.X
	p.Sprite.Active = Orient(p.Sprite, p.Motion.Facing)

	out.Events |= EventFlipped
	out.SpriteChanged = true
}

// delay pauses walking for a uniformly random wall-clock duration.
func (b *Behavior) delay(p PetRef, rng Rand, out *Outcome) {
	span := int((MaxDelay - MinDelay) / time.Millisecond)
	d := MinDelay + time.Duration(rng.Intn(span+1))*time.Millisecond

	p.Motion.Mode = components.ModeDelayed
	p.Motion.DelayUntil = b.clock.Now().Add(d)
	out.Events |= EventDelayed
}

// jump launches the pet upward. Walking is suspended until it lands again.
func (b *Behavior) jump(p PetRef, rng Rand, out *Outcome) {
	p.Vel.Y = MinJumpVelocity + rng.Intn(MaxJumpVelocity-MinJumpVelocity+1)
	p.Pos.Y += float64(p.Vel.Y)

	p.Motion.Mode = components.ModeJumping
	p.Motion.AirTicks = 0
	out.Events |= EventJumped
}
