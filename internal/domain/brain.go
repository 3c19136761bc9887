package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Nombres canonicos de las cinco dimensiones cognitivas.
const (
	DimTopology  = "topology"
	DimVelocity  = "velocity"
	DimDepth     = "depth"
	DimEntropy   = "entropy"
	DimEvolution = "evolution"
)

// DimensionNames fija el orden de iteracion sobre dimensiones.
var DimensionNames = []string{DimTopology, DimVelocity, DimDepth, DimEntropy, DimEvolution}

// Dimensions es el vector cognitivo de un brain; cada valor vive en [0,1].
type Dimensions struct {
	Topology  float64 `json:"topology"`
	Velocity  float64 `json:"velocity"`
	Depth     float64 `json:"depth"`
	Entropy   float64 `json:"entropy"`
	Evolution float64 `json:"evolution"`
}

// Value devuelve el valor de una dimension por nombre; 0 si no existe.
func (d Dimensions) Value(name string) float64 {
	switch name {
	case DimTopology:
		return d.Topology
	case DimVelocity:
		return d.Velocity
	case DimDepth:
		return d.Depth
	case DimEntropy:
		return d.Entropy
	case DimEvolution:
		return d.Evolution
	}
	return 0
}

// Set asigna el valor de una dimension por nombre.
func (d *Dimensions) Set(name string, value float64) {
	switch name {
	case DimTopology:
		d.Topology = value
	case DimVelocity:
		d.Velocity = value
	case DimDepth:
		d.Depth = value
	case DimEntropy:
		d.Entropy = value
	case DimEvolution:
		d.Evolution = value
	}
}

// Clamped limita cada dimension al rango [0,1].
func (d Dimensions) Clamped() Dimensions {
	out := d
	for _, name := range DimensionNames {
		v := out.Value(name)
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out.Set(name, v)
	}
	return out
}

// Vector convierte las dimensiones al tipo pgvector para persistencia.
func (d Dimensions) Vector() pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(d.Topology),
		float32(d.Velocity),
		float32(d.Depth),
		float32(d.Entropy),
		float32(d.Evolution),
	})
}

// DimensionsFromVector reconstruye dimensiones desde una columna pgvector.
func DimensionsFromVector(v pgvector.Vector) Dimensions {
	s := v.Slice()
	var d Dimensions
	for i, name := range DimensionNames {
		if i < len(s) {
			d.Set(name, float64(s[i]))
		}
	}
	return d
}

// Brain es el perfil cognitivo persistido de un usuario.
// Invariante: Archetype siempre se deriva de Dimensions al escribir.
type Brain struct {
	ID              string     `json:"brain_id"`
	UserID          string     `json:"user_id,omitempty"`
	Archetype       Archetype  `json:"archetype"`
	Dimensions      Dimensions `json:"dimensions"`
	NodeCount       int        `json:"node_count"`
	ConnectionCount int        `json:"connection_count"`
	Public          bool       `json:"public"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Stats deriva metricas agregadas del brain.
func (b Brain) Stats() BrainStats {
	density := 0.0
	if b.NodeCount > 0 {
		density = float64(b.ConnectionCount) / float64(b.NodeCount)
	}
	return BrainStats{
		BrainID:         b.ID,
		Archetype:       b.Archetype,
		NodeCount:       b.NodeCount,
		ConnectionCount: b.ConnectionCount,
		Density:         density,
		AvgConnections:  density,
		Dimensions:      b.Dimensions,
	}
}

// BrainStats expone metricas derivadas de un brain.
type BrainStats struct {
	BrainID         string     `json:"brain_id"`
	Archetype       Archetype  `json:"archetype"`
	NodeCount       int        `json:"node_count"`
	ConnectionCount int        `json:"connection_count"`
	Density         float64    `json:"density"`
	AvgConnections  float64    `json:"avg_connections"`
	Dimensions      Dimensions `json:"dimensions"`
}

// FamousBrain es un brain de ejemplo precargado para demos.
type FamousBrain struct {
	Name            string     `json:"name"`
	Archetype       Archetype  `json:"archetype"`
	Dimensions      Dimensions `json:"dimensions"`
	NodeCount       int        `json:"node_count"`
	ConnectionCount int        `json:"connection_count"`
}
