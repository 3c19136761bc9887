package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"mirrorbrain/internal/domain"
)

// ErrValidation marca envios de quiz malformados.
var ErrValidation = errors.New("validation error")

// QuestionCount es el numero fijo de preguntas del quiz.
const QuestionCount = 8

// Question es una pregunta del quiz con sus pesos por opcion.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`

	weights []map[string]float64
}

// quizQuestions define el cuestionario fijo de ocho preguntas.
// Cada opcion aporta incrementos (o decrementos) a una o dos dimensiones.
var quizQuestions = []Question{
	{
		ID:       1,
		Question: "When you learn something new, you...",
		Options: []string{
			"Dive deep into one thing",
			"Connect it to everything else",
			"Find the practical application",
			"Question the assumptions",
		},
		weights: []map[string]float64{
			{domain.DimDepth: 2, domain.DimVelocity: -1},
			{domain.DimTopology: 2, domain.DimEntropy: 1},
			{domain.DimVelocity: 2, domain.DimDepth: -1},
			{domain.DimEntropy: 2, domain.DimEvolution: 1},
		},
	},
	{
		ID:       2,
		Question: "Your browser tabs right now:",
		Options: []string{
			"5 or less (focused)",
			"10-20 (curious)",
			"20-50 (explorer)",
			"50+ (chaos genius)",
		},
		weights: []map[string]float64{
			{domain.DimDepth: 2, domain.DimEntropy: -1},
			{domain.DimTopology: 1, domain.DimVelocity: 1},
			{domain.DimTopology: 2, domain.DimEntropy: 1},
			{domain.DimEntropy: 3, domain.DimEvolution: 1},
		},
	},
	{
		ID:       3,
		Question: "When explaining ideas, you prefer:",
		Options: []string{
			"Bullet points",
			"Stories and analogies",
			"Diagrams and visuals",
			"Just show me the code",
		},
		weights: []map[string]float64{
			{domain.DimVelocity: 2, domain.DimDepth: 1},
			{domain.DimTopology: 2, domain.DimEntropy: 1},
			{domain.DimTopology: 2, domain.DimDepth: 1},
			{domain.DimVelocity: 2, domain.DimEvolution: 1},
		},
	},
	{
		ID:       4,
		Question: "Your notes are:",
		Options: []string{
			"Nonexistent",
			"Linear documents",
			"Connected web",
			"Organized chaos",
		},
		weights: []map[string]float64{
			{domain.DimVelocity: 2, domain.DimDepth: -1},
			{domain.DimDepth: 2, domain.DimEntropy: -1},
			{domain.DimTopology: 3, domain.DimEvolution: 1},
			{domain.DimEntropy: 2, domain.DimTopology: 1},
		},
	},
	{
		ID:       5,
		Question: "What drives you:",
		Options: []string{
			"Building things",
			"Understanding things",
			"Connecting things",
			"Improving things",
		},
		weights: []map[string]float64{
			{domain.DimVelocity: 2, domain.DimEvolution: 1},
			{domain.DimDepth: 2, domain.DimTopology: 1},
			{domain.DimTopology: 2, domain.DimEntropy: 1},
			{domain.DimEvolution: 2, domain.DimDepth: 1},
		},
	},
	{
		ID:       6,
		Question: "Your thinking speed:",
		Options: []string{
			"Slow and deep",
			"Fast and iterative",
			"Bursts of insight",
			"Always running",
		},
		weights: []map[string]float64{
			{domain.DimDepth: 3, domain.DimVelocity: -1},
			{domain.DimVelocity: 2, domain.DimEvolution: 1},
			{domain.DimEntropy: 2, domain.DimTopology: 1},
			{domain.DimVelocity: 3, domain.DimEntropy: 1},
		},
	},
	{
		ID:       7,
		Question: "When stuck, you:",
		Options: []string{
			"Push through",
			"Step away",
			"Talk it out",
			"Research more",
		},
		weights: []map[string]float64{
			{domain.DimVelocity: 2, domain.DimDepth: 1},
			{domain.DimEntropy: 1, domain.DimEvolution: 1},
			{domain.DimTopology: 2, domain.DimEntropy: 1},
			{domain.DimDepth: 2, domain.DimTopology: 1},
		},
	},
	{
		ID:       8,
		Question: "Your ideal AI is:",
		Options: []string{
			"A fast executor",
			"A thinking partner",
			"A knowledge base",
			"A creative spark",
		},
		weights: []map[string]float64{
			{domain.DimVelocity: 2, domain.DimEvolution: 1},
			{domain.DimTopology: 2, domain.DimDepth: 1},
			{domain.DimDepth: 2, domain.DimEntropy: -1},
			{domain.DimEntropy: 2, domain.DimEvolution: 1},
		},
	},
}

// Questions devuelve las preguntas del quiz sin exponer los pesos.
func Questions() []Question {
	out := make([]Question, len(quizQuestions))
	copy(out, quizQuestions)
	return out
}

func questionByID(id int) (Question, bool) {
	for _, q := range quizQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// CalculateDimensions agrega los pesos de las respuestas y normaliza a [0,1].
// Exige exactamente una respuesta valida por pregunta.
func CalculateDimensions(answers []domain.QuizAnswer) (domain.Dimensions, error) {
	if len(answers) != QuestionCount {
		return domain.Dimensions{}, fmt.Errorf("%w: expected %d answers, got %d", ErrValidation, QuestionCount, len(answers))
	}

	raw := make(map[string]float64, len(domain.DimensionNames))
	seen := make(map[int]bool, QuestionCount)

	for _, answer := range answers {
		question, ok := questionByID(answer.QuestionID)
		if !ok {
			return domain.Dimensions{}, fmt.Errorf("%w: unknown question id %d", ErrValidation, answer.QuestionID)
		}
		if seen[answer.QuestionID] {
			return domain.Dimensions{}, fmt.Errorf("%w: duplicate answer for question %d", ErrValidation, answer.QuestionID)
		}
		seen[answer.QuestionID] = true

		if answer.AnswerIndex < 0 || answer.AnswerIndex >= len(question.Options) {
			return domain.Dimensions{}, fmt.Errorf("%w: answer index %d out of range for question %d", ErrValidation, answer.AnswerIndex, answer.QuestionID)
		}
		for dim, value := range question.weights[answer.AnswerIndex] {
			raw[dim] += value
		}
	}

	// Normalizar: dividir por el maximo absoluto y reescalar a [0,1].
	maxAbs := 0.0
	for _, name := range domain.DimensionNames {
		if abs := math.Abs(raw[name]); abs > maxAbs {
			maxAbs = abs
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	var dims domain.Dimensions
	for _, name := range domain.DimensionNames {
		dims.Set(name, (raw[name]/maxAbs+1)/2)
	}
	return dims.Clamped(), nil
}

// DetermineArchetype clasifica un vector de dimensiones en un arquetipo.
// La dimension primaria pesa doble; empates los gana el primero en ArchetypePriority.
func DetermineArchetype(dims domain.Dimensions) domain.Archetype {
	best := domain.ArchetypePriority[0]
	bestScore := -1.0

	for _, archetype := range domain.ArchetypePriority {
		info := domain.ArchetypeCatalog[archetype]
		score := dims.Value(info.Primary)*2 + dims.Value(info.Secondary)
		if score > bestScore {
			bestScore = score
			best = archetype
		}
	}
	return best
}

// BrainMetrics genera conteos de nodos y conexiones a partir de las dimensiones.
// Incluye un jitter acotado; los pisos son 500 nodos y 100 conexiones.
func BrainMetrics(dims domain.Dimensions) (nodes, connections int) {
	const (
		baseNodes       = 1000
		baseConnections = 200
	)

	nodes = baseNodes + int(dims.Topology*3000) + int(dims.Depth*2000) + rand.Intn(401) - 200
	connections = baseConnections + int(dims.Topology*600) + int(dims.Entropy*300) + rand.Intn(101) - 50

	if nodes < 500 {
		nodes = 500
	}
	if connections < 100 {
		connections = 100
	}
	return nodes, connections
}

// NewBrainID genera un id corto con el prefijo historico BRAIN-.
func NewBrainID() string {
	return "BRAIN-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ProcessQuiz corre el pipeline completo: dimensiones, arquetipo y metricas.
func ProcessQuiz(submission domain.QuizSubmission) (domain.QuizResult, error) {
	dims, err := CalculateDimensions(submission.Answers)
	if err != nil {
		return domain.QuizResult{}, err
	}

	archetype := DetermineArchetype(dims)
	info := domain.ArchetypeCatalog[archetype]
	nodes, connections := BrainMetrics(dims)

	return domain.QuizResult{
		BrainID:         NewBrainID(),
		Archetype:       archetype,
		ArchetypeName:   info.Name,
		ArchetypeEmoji:  info.Emoji,
		Description:     info.Description,
		Strengths:       info.Strengths,
		Dimensions:      dims,
		NodeCount:       nodes,
		ConnectionCount: connections,
	}, nil
}
