package systems

import (
	"image"
	"log/slog"
	"time"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/sprite"
)

// checkEvolution starts the evolution pulse once the pet's level reaches the
// threshold for its current stage.
func (b *Behavior) checkEvolution(p PetRef, out *Outcome) {
	need, ok := b.params.Threshold(p.Pet.Stage)
	if !ok || p.Pet.Level < need {
		return
	}

	m := p.Motion
	m.Mode = components.ModeEvolving
	m.EvolveTicks = 0
	m.DelayUntil = time.Time{}
	out.Events |= EventEvolveStarted
}

// evolveTick plays one pulse tick. The last tick advances the stage, swaps in the
// new sprite and drops the pet back to falling so it re-settles on its floor.
func (b *Behavior) evolveTick(p PetRef, out *Outcome) {
	m := p.Motion
	m.EvolveTicks++
	out.SpriteChanged = true

	if m.EvolveTicks < b.params.EvolutionTicks {
		// Always tint the untinted stage sprite
		p.Sprite.Active = sprite.Tint(Orient(p.Sprite, m.Facing), b.params.Tint)
		return
	}

	next := p.Pet.Stage + 1
	p.Pet.Stage = next
	if img, err := b.resolve(p.Pet.Name, next); err != nil {
		logAssetFallback(p.Pet.Name, next, err)
		out.Events |= EventAssetFallback
	} else {
		p.Sprite.Base = img
		p.Sprite.Flipped = nil
		p.Sprite.Stage = next
	}
	p.Sprite.Active = Orient(p.Sprite, m.Facing)

	m.Mode = components.ModeFalling
	m.EvolveTicks = 0
	m.AirTicks = 0
	p.Vel.Y = 0
	out.Events |= EventEvolved
}

func (b *Behavior) resolve(name string, stage int) (image.Image, error) {
	if b.assets == nil {
		return nil, sprite.ErrAssetNotFound
	}
	return b.assets.Resolve(name, stage)
}

// Orient returns the stage sprite turned to face the given direction.
// The asset itself faces left (-1); the mirrored copy is built once per stage.
func Orient(s *components.Sprite, facing int) image.Image {
	if facing < 0 || s.Base == nil {
		return s.Base
	}
	if s.Flipped == nil {
		s.Flipped = sprite.Mirror(s.Base)
	}
	return s.Flipped
}

func logAssetFallback(name string, stage int, err error) {
	slog.Warn("sprite unavailable, keeping previous",
		"pet", name,
		"stage", stage,
		"error", err,
	)
}
