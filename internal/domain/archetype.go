package domain

// Archetype clasifica un brain en uno de ocho perfiles cognitivos.
type Archetype string

const (
	ArchetypeArchitect  Archetype = "architect"
	ArchetypeExplorer   Archetype = "explorer"
	ArchetypeBuilder    Archetype = "builder"
	ArchetypeAnalyst    Archetype = "analyst"
	ArchetypeConnector  Archetype = "connector"
	ArchetypeCreative   Archetype = "creative"
	ArchetypeScholar    Archetype = "scholar"
	ArchetypeStrategist Archetype = "strategist"
)

// ArchetypePriority define el orden de desempate del clasificador.
var ArchetypePriority = []Archetype{
	ArchetypeArchitect,
	ArchetypeExplorer,
	ArchetypeBuilder,
	ArchetypeAnalyst,
	ArchetypeConnector,
	ArchetypeCreative,
	ArchetypeScholar,
	ArchetypeStrategist,
}

// ArchetypeInfo describe un arquetipo y sus dimensiones dominantes.
type ArchetypeInfo struct {
	Name        string   `json:"name"`
	Emoji       string   `json:"emoji"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
	Primary     string   `json:"-"`
	Secondary   string   `json:"-"`
}

// ArchetypeCatalog mapea cada arquetipo a su descripcion y dimensiones primarias.
var ArchetypeCatalog = map[Archetype]ArchetypeInfo{
	ArchetypeArchitect: {
		Name:        "The Architect",
		Emoji:       "🔷",
		Description: "Systems thinker who builds frameworks. You see patterns where others see chaos and create structures that scale.",
		Strengths:   []string{"Systems design", "Pattern recognition", "Framework building", "Long-term planning"},
		Primary:     DimTopology,
		Secondary:   DimDepth,
	},
	ArchetypeExplorer: {
		Name:        "The Explorer",
		Emoji:       "🟣",
		Description: "Curiosity-driven with wide connections. You thrive on discovery and make unexpected connections across domains.",
		Strengths:   []string{"Cross-domain thinking", "Curiosity", "Breadth of knowledge", "Novel connections"},
		Primary:     DimTopology,
		Secondary:   DimEntropy,
	},
	ArchetypeBuilder: {
		Name:        "The Builder",
		Emoji:       "🟢",
		Description: "Execution-focused, ships fast. You turn ideas into reality with speed and iteration.",
		Strengths:   []string{"Rapid execution", "Pragmatism", "Iteration", "Getting things done"},
		Primary:     DimVelocity,
		Secondary:   DimEvolution,
	},
	ArchetypeAnalyst: {
		Name:        "The Analyst",
		Emoji:       "🟡",
		Description: "Deep diver where precision matters. You go deep, understand nuances, and catch what others miss.",
		Strengths:   []string{"Deep analysis", "Precision", "Detail orientation", "Critical thinking"},
		Primary:     DimDepth,
		Secondary:   DimTopology,
	},
	ArchetypeConnector: {
		Name:        "The Connector",
		Emoji:       "🔵",
		Description: "Bridges people and ideas. You see relationships and create synergies between disparate elements.",
		Strengths:   []string{"Relationship building", "Synthesis", "Communication", "Bridge building"},
		Primary:     DimTopology,
		Secondary:   DimVelocity,
	},
	ArchetypeCreative: {
		Name:        "The Creative",
		Emoji:       "🟠",
		Description: "Makes unexpected links with artistic flair. You see possibilities and create novel combinations.",
		Strengths:   []string{"Creative thinking", "Innovation", "Artistic vision", "Unexpected connections"},
		Primary:     DimEntropy,
		Secondary:   DimEvolution,
	},
	ArchetypeScholar: {
		Name:        "The Scholar",
		Emoji:       "⚪",
		Description: "Knowledge accumulator, thorough and comprehensive. You build deep understanding over time.",
		Strengths:   []string{"Knowledge depth", "Thoroughness", "Research", "Comprehensive understanding"},
		Primary:     DimDepth,
		Secondary:   DimEntropy,
	},
	ArchetypeStrategist: {
		Name:        "The Strategist",
		Emoji:       "🔴",
		Description: "Big picture, long-term thinker. You plan moves ahead and optimize for lasting impact.",
		Strengths:   []string{"Strategic planning", "Long-term vision", "Optimization", "Impact focus"},
		Primary:     DimEvolution,
		Secondary:   DimDepth,
	},
}

// Valid indica si el arquetipo pertenece al catalogo.
func (a Archetype) Valid() bool {
	_, ok := ArchetypeCatalog[a]
	return ok
}
