package domain

// PlayerStats is the per-player aggregate record for one tenant.
type PlayerStats struct {
	GuildID  string
	ServerID string
	Name     string
	Kills    int64
	Deaths   int64
	KDRatio  float64
}

// RecomputeKD updates KDRatio from the current counters. When a player
// has no deaths the ratio equals the kill count, matching how the stats
// were historically reported.
func (p *PlayerStats) RecomputeKD() {
	if p.Deaths > 0 {
		p.KDRatio = float64(p.Kills) / float64(p.Deaths)
		return
	}

	p.KDRatio = float64(p.Kills)
}
