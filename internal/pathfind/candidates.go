package pathfind

import (
	"strings"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// Candidate path templates, most-current convention first. Order is a
// contract: earlier templates are higher-confidence and the resolver
// returns the first one that validates. The single-segment
// ({host}_{server}) and double-segment ({host}/{server}) families both
// occur on real deployments and must both be kept.
var (
	deathEventTemplates = []string{
		"{host}_{server}/actual1/deathlogs",
		"{host}_{server}/actual/deathlogs",
		"{host}/{server}/actual1/deathlogs",
		"{host}/{server}/actual/deathlogs",
		"{server}/actual1/deathlogs",
		"{server}/actual/deathlogs",
	}

	engineLogTemplates = []string{
		"{host}_{server}/Logs",
		"{host}_{server}/Deadside/Logs",
		"{host}/{server}/Logs",
		"{host}/{server}/Deadside/Logs",
		"{server}/Logs",
		"{server}/Deadside/Logs",
	}
)

// Generator produces ordered candidate directory paths for a
// server/category. It is a pure function of the server's identity fields
// plus the cache's success history — no remote calls, no side effects.
type Generator struct {
	cache *Cache
}

// NewGenerator returns a generator reading proven paths from cache.
// A nil cache is allowed; the generator then emits templates only.
func NewGenerator(cache *Cache) *Generator {
	return &Generator{cache: cache}
}

// Generate returns the candidate paths for a server/category in
// probe order: canonical templates first, then cache-proven historical
// paths not already present, preserving first-seen order.
func (g *Generator) Generate(server *domain.GameServer, cat domain.Category) []string {
	templates := deathEventTemplates
	if cat == domain.EngineLog {
		templates = engineLogTemplates
	}

	host := server.EffectiveHost()
	token := server.ServerToken()

	paths := make([]string, 0, len(templates))
	seen := make(map[string]bool, len(templates))

	for _, tmpl := range templates {
		p := strings.ReplaceAll(tmpl, "{host}", host)
		p = strings.ReplaceAll(p, "{server}", token)

		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	if g.cache != nil {
		for _, p := range g.cache.History(server, cat) {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}

	return paths
}

// conventionalRoot is the tenant's expected top-level directory, used as
// the fallback search root when every candidate pattern fails.
func conventionalRoot(server *domain.GameServer) string {
	return server.EffectiveHost() + "_" + server.ServerToken()
}
