package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"mirrorbrain/internal/domain"
)

// Errores del motor de twins.
var (
	ErrUnknownTwin = errors.New("unknown twin type")
	ErrSameTwins   = errors.New("debate twins must be different")
)

const (
	debateMinRounds = 1
	debateMaxRounds = 5
)

// twinTemplates mapea (twin, arquetipo) a la plantilla de respuesta.
// Unica computacion permitida: sustituir la consulta del usuario.
var twinTemplates = map[domain.TwinType]map[domain.Archetype]string{
	domain.TwinGuardian: {
		domain.ArchetypeArchitect:  "Before you commit to %q, check it against the framework you already built. Structure protects focus.",
		domain.ArchetypeExplorer:   "Not every thread deserves pulling. Ask whether %q expands your map or just scatters it.",
		domain.ArchetypeBuilder:    "Shipping matters, but so does finishing. Park %q unless it moves the thing you are building today.",
		domain.ArchetypeAnalyst:    "Depth is your edge. Guard it: does %q deserve a deep dive, or is it surface noise?",
		domain.ArchetypeConnector:  "You bridge people easily, which also means anyone can pull you in. Let %q wait until your own work is safe.",
		domain.ArchetypeCreative:   "Chaos feeds you, but it can also drown you. Give %q a container before you let it in.",
		domain.ArchetypeScholar:    "One more source is not always progress. Decide what question %q actually answers before collecting it.",
		domain.ArchetypeStrategist: "Weigh %q against the long game. If it does not compound, it is a distraction dressed as an opportunity.",
	},
	domain.TwinScout: {
		domain.ArchetypeArchitect:  "There is an adjacent system to %q worth mapping: the same pattern shows up one abstraction level higher.",
		domain.ArchetypeExplorer:   "Follow %q sideways, not just forward. The unexpected neighbor domain is usually where your best finds live.",
		domain.ArchetypeBuilder:    "Someone has half-built %q before. Find their dead end and start your prototype one step past it.",
		domain.ArchetypeAnalyst:    "The literature around %q has a gap nobody has measured precisely. That gap is yours.",
		domain.ArchetypeConnector:  "Two people you already know are circling %q from opposite sides. Introduce them and stand in the middle.",
		domain.ArchetypeCreative:   "Invert %q. The reversed version is stranger, and stranger is where you do your best work.",
		domain.ArchetypeScholar:    "There is an older body of work under %q that the current conversation forgot. Dig there first.",
		domain.ArchetypeStrategist: "Scout the second-order effects of %q. The opportunity is rarely in the move itself, it is in the response to it.",
	},
	domain.TwinSynthesizer: {
		domain.ArchetypeArchitect:  "Fold %q into the structure you already trust: same primitives, new layer. One framework, not two.",
		domain.ArchetypeExplorer:   "Your scattered notes on %q share a spine. Name the spine and the fragments become a theory.",
		domain.ArchetypeBuilder:    "Merge %q with what you shipped last. The combined version is smaller than the sum and twice as useful.",
		domain.ArchetypeAnalyst:    "The details you gathered on %q compress into three variables. Everything else is instance, not essence.",
		domain.ArchetypeConnector:  "Treat %q as a junction, not a topic: the people, the ideas and the timing converge on one pattern.",
		domain.ArchetypeCreative:   "Collide %q with the last unrelated thing that excited you. The overlap is the piece worth keeping.",
		domain.ArchetypeScholar:    "Your accumulated reading already contains the answer to %q, distributed across sources. Write the synthesis.",
		domain.ArchetypeStrategist: "Place %q on the longest timeline you care about. The frame that survives that stretch is the right one.",
	},
	domain.TwinMirror: {
		domain.ArchetypeArchitect:  "You are structuring %q before understanding it. What would you see if you let it stay messy one more week?",
		domain.ArchetypeExplorer:   "Is %q genuine curiosity, or an elegant way to avoid finishing the last thing you started?",
		domain.ArchetypeBuilder:    "You move fast on %q. Fast toward what? Say the destination out loud and check it still holds.",
		domain.ArchetypeAnalyst:    "You keep adding detail to %q. Which conclusion are you avoiding by never calling the analysis done?",
		domain.ArchetypeConnector:  "You are brokering %q for everyone else. Where are you in it?",
		domain.ArchetypeCreative:   "The wild take on %q is safe for you; the obvious take is the risky one. Which are you dodging?",
		domain.ArchetypeScholar:    "At what point does researching %q stop being preparation and start being hiding?",
		domain.ArchetypeStrategist: "Your plan for %q assumes the world stays still. What breaks first when it does not?",
	},
}

// twinReasoning es la explicacion fija de cada twin.
var twinReasoning = map[domain.TwinType]string{
	domain.TwinGuardian:    "Protecting your focus and boundaries.",
	domain.TwinScout:       "Scouting new territory and connections.",
	domain.TwinSynthesizer: "Synthesizing ideas into coherent frameworks.",
	domain.TwinMirror:      "Reflecting back what you might not see.",
}

// TwinEngine resuelve invocaciones de twins con plantillas fijas
// y mantiene el historial de interacciones por brain.
type TwinEngine struct {
	mu      sync.Mutex
	history map[string][]domain.TwinExchange
}

// NewTwinEngine crea un motor de twins vacio.
func NewTwinEngine() *TwinEngine {
	return &TwinEngine{history: make(map[string][]domain.TwinExchange)}
}

func renderTwin(twin domain.TwinType, archetype domain.Archetype, query string) (string, error) {
	byArchetype, ok := twinTemplates[twin]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTwin, twin)
	}
	template, ok := byArchetype[archetype]
	if !ok {
		// Arquetipo fuera de catalogo: responder con la voz base del twin.
		template = byArchetype[domain.ArchetypeExplorer]
	}
	return fmt.Sprintf(template, query), nil
}

// Invoke ejecuta un twin sobre un brain y registra el intercambio.
func (e *TwinEngine) Invoke(brain domain.Brain, twin domain.TwinType, query string) (domain.TwinResponse, error) {
	response, err := renderTwin(twin, brain.Archetype, query)
	if err != nil {
		return domain.TwinResponse{}, err
	}

	resp := domain.TwinResponse{
		TwinType:       twin,
		BrainID:        brain.ID,
		Response:       response,
		Reasoning:      twinReasoning[twin],
		Suggestions:    twinSuggestions(twin),
		ResonanceHints: twinHints(twin, brain.Dimensions),
	}
	e.record(brain.ID, twin, domain.TwinModeSingle, query, response)
	return resp, nil
}

// Council invoca a los cuatro twins sobre la misma consulta.
func (e *TwinEngine) Council(brain domain.Brain, query string) domain.CouncilResponse {
	council := domain.CouncilResponse{BrainID: brain.ID, Query: query}
	for _, twin := range domain.TwinTypes {
		response, _ := renderTwin(twin, brain.Archetype, query)
		council.Responses = append(council.Responses, domain.TwinResponse{
			TwinType:       twin,
			BrainID:        brain.ID,
			Response:       response,
			Reasoning:      twinReasoning[twin],
			Suggestions:    twinSuggestions(twin),
			ResonanceHints: twinHints(twin, brain.Dimensions),
		})
		e.record(brain.ID, twin, domain.TwinModeCouncil, query, response)
	}
	return council
}

// Debate alterna dos twins distintos durante los rounds pedidos.
func (e *TwinEngine) Debate(brain domain.Brain, query string, twin1, twin2 domain.TwinType, rounds int) (domain.DebateResponse, error) {
	if !twin1.Valid() {
		return domain.DebateResponse{}, fmt.Errorf("%w: %s", ErrUnknownTwin, twin1)
	}
	if !twin2.Valid() {
		return domain.DebateResponse{}, fmt.Errorf("%w: %s", ErrUnknownTwin, twin2)
	}
	if twin1 == twin2 {
		return domain.DebateResponse{}, ErrSameTwins
	}
	if rounds < debateMinRounds {
		rounds = debateMinRounds
	}
	if rounds > debateMaxRounds {
		rounds = debateMaxRounds
	}

	debate := domain.DebateResponse{
		BrainID: brain.ID,
		Query:   query,
		Twin1:   twin1,
		Twin2:   twin2,
		Rounds:  rounds,
	}
	for round := 1; round <= rounds; round++ {
		for _, twin := range []domain.TwinType{twin1, twin2} {
			response, _ := renderTwin(twin, brain.Archetype, query)
			debate.Turns = append(debate.Turns, domain.DebateTurn{
				Round:    round,
				TwinType: twin,
				Response: response,
			})
			e.record(brain.ID, twin, domain.TwinModeDebate, query, response)
		}
	}
	return debate, nil
}

// Relay encadena guardian → scout → synthesizer → mirror.
// Cada twin recibe como entrada la salida del anterior.
func (e *TwinEngine) Relay(brain domain.Brain, query string) domain.RelayResponse {
	relay := domain.RelayResponse{BrainID: brain.ID, Query: query}

	input := query
	for _, twin := range domain.TwinTypes {
		response, _ := renderTwin(twin, brain.Archetype, input)
		relay.Steps = append(relay.Steps, domain.RelayStep{
			TwinType: twin,
			Input:    input,
			Response: response,
		})
		e.record(brain.ID, twin, domain.TwinModeRelay, input, response)
		input = response
	}
	if n := len(relay.Steps); n > 0 {
		relay.Final = relay.Steps[n-1].Response
	}
	return relay
}

// History devuelve el historial de intercambios de un brain.
func (e *TwinEngine) History(brainID string) domain.TwinHistory {
	e.mu.Lock()
	defer e.mu.Unlock()

	exchanges := make([]domain.TwinExchange, len(e.history[brainID]))
	copy(exchanges, e.history[brainID])
	return domain.TwinHistory{BrainID: brainID, Exchanges: exchanges}
}

func (e *TwinEngine) record(brainID string, twin domain.TwinType, mode domain.TwinMode, query, response string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history[brainID] = append(e.history[brainID], domain.TwinExchange{
		TwinType:  twin,
		Mode:      mode,
		Query:     query,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	})
}

// twinSuggestions devuelve la sugerencia base de cada twin.
func twinSuggestions(twin domain.TwinType) []string {
	switch twin {
	case domain.TwinGuardian:
		return []string{"Stay focused on what matters most"}
	case domain.TwinScout:
		return []string{"Explore adjacent possibilities"}
	case domain.TwinSynthesizer:
		return []string{"Look for the unifying pattern"}
	case domain.TwinMirror:
		return []string{"Question your assumptions"}
	}
	return nil
}

// twinHints deriva pistas de resonancia desde las dimensiones del brain.
func twinHints(twin domain.TwinType, dims domain.Dimensions) []string {
	var hints []string
	switch twin {
	case domain.TwinGuardian:
		if dims.Depth > 0.7 {
			hints = append(hints, "Deep focus mode")
		}
		if dims.Velocity > 0.7 {
			hints = append(hints, "Fast iteration preferred")
		}
	case domain.TwinScout:
		if dims.Topology > 0.6 {
			hints = append(hints, "High connectivity")
		}
		if dims.Entropy > 0.6 {
			hints = append(hints, "Chaos-friendly")
		}
	case domain.TwinSynthesizer:
		if dims.Topology > 0.5 && dims.Depth > 0.5 {
			hints = append(hints, "Framework builder")
		}
		if dims.Evolution > 0.6 {
			hints = append(hints, "Growth-oriented")
		}
	case domain.TwinMirror:
		if dims.Entropy < 0.3 {
			hints = append(hints, "Consider unexpected angles")
		}
		if dims.Depth < 0.3 {
			hints = append(hints, "Go deeper")
		}
	}
	if len(hints) == 0 {
		hints = []string{string(twin) + " active"}
	}
	return hints
}
