package session

import (
	"triocell/internal/protocol"
	"triocell/internal/sim/engine"
)

// applyPatch overlays a partial wire config onto base. The result still has
// to go through engine.Normalize before use.
func applyPatch(base engine.Config, p *protocol.ConfigPatch) engine.Config {
	if p == nil {
		return base
	}
	if p.Width != nil {
		base.Width = *p.Width
	}
	if p.Height != nil {
		base.Height = *p.Height
	}
	if p.WrapWorld != nil {
		base.WrapWorld = *p.WrapWorld
	}
	if p.TickRateUI != nil {
		base.TickRateUI = *p.TickRateUI
	}
	if p.ChunkTicks != nil {
		base.ChunkTicks = *p.ChunkTicks
	}
	if p.Seed != nil {
		base.Seed = *p.Seed
	}
	if p.InitMode != nil {
		base.InitMode = engine.InitMode(*p.InitMode)
	}
	if p.AliveRatio != nil {
		base.AliveRatio = *p.AliveRatio
	}
	if p.ReproThreshold != nil {
		base.ReproThreshold = *p.ReproThreshold
	}
	if c := p.Constants; c != nil {
		if c.MaxEnergy10 != nil {
			base.Consts.MaxEnergy10 = *c.MaxEnergy10
		}
		if c.StartEnergy10 != nil {
			base.Consts.StartEnergy10 = *c.StartEnergy10
		}
		if c.SpawnEnergy10 != nil {
			base.Consts.SpawnEnergy10 = *c.SpawnEnergy10
		}
		if c.ThreatPenalty10 != nil {
			base.Consts.ThreatPenalty10 = *c.ThreatPenalty10
		}
		if c.AllyBonus10 != nil {
			base.Consts.AllyBonus10 = *c.AllyBonus10
		}
		if c.PreyBonus10 != nil {
			base.Consts.PreyBonus10 = *c.PreyBonus10
		}
		if c.AgingDrain10 != nil {
			base.Consts.AgingDrain10 = *c.AgingDrain10
		}
	}
	return base
}
