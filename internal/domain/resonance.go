package domain

// ResonanceLevel gradua la afinidad entre dos brains.
type ResonanceLevel string

const (
	ResonanceAware     ResonanceLevel = "aware"
	ResonanceResonant  ResonanceLevel = "resonant"
	ResonanceEntangled ResonanceLevel = "entangled"
	ResonanceMerged    ResonanceLevel = "merged"
)

// ResonanceResult es el analisis de afinidad entre dos brains.
type ResonanceResult struct {
	BrainID1                string         `json:"brain_id_1"`
	BrainID2                string         `json:"brain_id_2"`
	Level                   ResonanceLevel `json:"level"`
	OverlapScore            float64        `json:"overlap_score"`
	SharedDimensions        []string       `json:"shared_dimensions"`
	ComplementaryDimensions []string       `json:"complementary_dimensions"`
	TopDivergence           []string       `json:"top_divergence"`
	CollaborationPotential  float64        `json:"collaboration_potential"`
}
