package domain

import "time"

// TwinType identifica a cada twin de IA.
type TwinType string

const (
	TwinGuardian    TwinType = "guardian"
	TwinScout       TwinType = "scout"
	TwinSynthesizer TwinType = "synthesizer"
	TwinMirror      TwinType = "mirror"
)

// TwinTypes fija el orden canonico de los twins (tambien el orden del relay).
var TwinTypes = []TwinType{TwinGuardian, TwinScout, TwinSynthesizer, TwinMirror}

// Valid indica si el twin type es conocido.
func (t TwinType) Valid() bool {
	switch t {
	case TwinGuardian, TwinScout, TwinSynthesizer, TwinMirror:
		return true
	}
	return false
}

// TwinMode define las formas de invocar twins.
type TwinMode string

const (
	TwinModeSingle  TwinMode = "single"
	TwinModeCouncil TwinMode = "council"
	TwinModeDebate  TwinMode = "debate"
	TwinModeRelay   TwinMode = "relay"
)

// TwinResponse es la respuesta de un twin a una consulta.
type TwinResponse struct {
	TwinType       TwinType `json:"twin_type"`
	BrainID        string   `json:"brain_id"`
	Response       string   `json:"response"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Suggestions    []string `json:"suggestions"`
	ResonanceHints []string `json:"resonance_hints"`
}

// CouncilResponse agrupa la respuesta de los cuatro twins a la misma consulta.
type CouncilResponse struct {
	BrainID   string         `json:"brain_id"`
	Query     string         `json:"query"`
	Responses []TwinResponse `json:"responses"`
}

// DebateTurn es una intervencion dentro de un debate.
type DebateTurn struct {
	Round    int      `json:"round"`
	TwinType TwinType `json:"twin_type"`
	Response string   `json:"response"`
}

// DebateResponse es el resultado de un debate entre dos twins.
type DebateResponse struct {
	BrainID string       `json:"brain_id"`
	Query   string       `json:"query"`
	Twin1   TwinType     `json:"twin_1"`
	Twin2   TwinType     `json:"twin_2"`
	Rounds  int          `json:"rounds"`
	Turns   []DebateTurn `json:"turns"`
}

// RelayStep es un eslabon de la cadena guardian → scout → synthesizer → mirror.
type RelayStep struct {
	TwinType TwinType `json:"twin_type"`
	Input    string   `json:"input"`
	Response string   `json:"response"`
}

// RelayResponse es el resultado de encadenar los cuatro twins.
type RelayResponse struct {
	BrainID string      `json:"brain_id"`
	Query   string      `json:"query"`
	Steps   []RelayStep `json:"steps"`
	Final   string      `json:"final"`
}

// TwinExchange registra una interaccion twin/usuario para el historial.
type TwinExchange struct {
	TwinType  TwinType  `json:"twin_type"`
	Mode      TwinMode  `json:"mode"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// TwinHistory es el historial de interacciones de un brain.
type TwinHistory struct {
	BrainID   string         `json:"brain_id"`
	Exchanges []TwinExchange `json:"exchanges"`
}
