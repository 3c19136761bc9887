package service

import (
	"math"

	"mirrorbrain/internal/domain"
)

const (
	sharedThreshold       = 0.7
	complementaryHigh     = 0.7
	complementaryLow      = 0.4
	divergenceEpsilon     = 1e-9
	sharedBonusPerDim     = 0.15
	complementaryBonusPer = 0.2
	sameArchetypeFactor   = 0.1
	crossArchetypeFactor  = 0.15
)

// Overlap calcula la similitud media por dimension entre dos vectores.
// Equivale a uno menos la distancia L1 normalizada; siempre en [0,1].
func Overlap(d1, d2 domain.Dimensions) float64 {
	total := 0.0
	for _, name := range domain.DimensionNames {
		total += 1 - math.Abs(d1.Value(name)-d2.Value(name))
	}
	overlap := total / float64(len(domain.DimensionNames))
	if overlap < 0 {
		overlap = 0
	}
	if overlap > 1 {
		overlap = 1
	}
	return overlap
}

// SharedDimensions lista las dimensiones donde ambos brains puntuan alto.
func SharedDimensions(d1, d2 domain.Dimensions) []string {
	var shared []string
	for _, name := range domain.DimensionNames {
		if d1.Value(name) > sharedThreshold && d2.Value(name) > sharedThreshold {
			shared = append(shared, name)
		}
	}
	return shared
}

// ComplementaryDimensions lista dimensiones donde uno es fuerte y el otro debil.
func ComplementaryDimensions(d1, d2 domain.Dimensions) []string {
	var complementary []string
	for _, name := range domain.DimensionNames {
		v1, v2 := d1.Value(name), d2.Value(name)
		if (v1 > complementaryHigh && v2 < complementaryLow) || (v2 > complementaryHigh && v1 < complementaryLow) {
			complementary = append(complementary, name)
		}
	}
	return complementary
}

// TopDivergence lista las dimensiones con la mayor diferencia absoluta.
// Vectores identicos no divergen en ninguna dimension.
func TopDivergence(d1, d2 domain.Dimensions) []string {
	maxDiff := 0.0
	for _, name := range domain.DimensionNames {
		if diff := math.Abs(d1.Value(name) - d2.Value(name)); diff > maxDiff {
			maxDiff = diff
		}
	}
	if maxDiff <= divergenceEpsilon {
		return nil
	}

	var top []string
	for _, name := range domain.DimensionNames {
		if diff := math.Abs(d1.Value(name) - d2.Value(name)); maxDiff-diff <= divergenceEpsilon {
			top = append(top, name)
		}
	}
	return top
}

// resonanceLevel gradua la afinidad segun overlap y dimensiones compartidas.
func resonanceLevel(overlap float64, shared []string) domain.ResonanceLevel {
	switch {
	case overlap >= 0.9 && len(shared) >= 4:
		return domain.ResonanceMerged
	case overlap >= 0.75 && len(shared) >= 3:
		return domain.ResonanceEntangled
	case overlap >= 0.6 || len(shared) >= 2:
		return domain.ResonanceResonant
	default:
		return domain.ResonanceAware
	}
}

// CollaborationPotential estima el potencial de colaboracion entre dos brains.
func CollaborationPotential(b1, b2 domain.Brain, shared, complementary []string) float64 {
	potential := float64(len(shared))*sharedBonusPerDim + float64(len(complementary))*complementaryBonusPer

	// Mismo arquetipo colabora profundo pero comparte puntos ciegos.
	if b1.Archetype == b2.Archetype {
		potential += sameArchetypeFactor
	} else {
		potential += crossArchetypeFactor
	}

	if potential > 1 {
		potential = 1
	}
	return math.Round(potential*100) / 100
}

// CalculateResonance computa la afinidad completa entre dos brains.
// Simetrica: intercambiar los brains no cambia el resultado salvo los ids.
func CalculateResonance(b1, b2 domain.Brain) domain.ResonanceResult {
	overlap := Overlap(b1.Dimensions, b2.Dimensions)
	shared := SharedDimensions(b1.Dimensions, b2.Dimensions)
	complementary := ComplementaryDimensions(b1.Dimensions, b2.Dimensions)

	return domain.ResonanceResult{
		BrainID1:                b1.ID,
		BrainID2:                b2.ID,
		Level:                   resonanceLevel(overlap, shared),
		OverlapScore:            math.Round(overlap*1000) / 1000,
		SharedDimensions:        shared,
		ComplementaryDimensions: complementary,
		TopDivergence:           TopDivergence(b1.Dimensions, b2.Dimensions),
		CollaborationPotential:  CollaborationPotential(b1, b2, shared, complementary),
	}
}
