package domain

import "time"

// QuizAnswer es la respuesta a una pregunta del quiz.
type QuizAnswer struct {
	QuestionID  int `json:"question_id"`
	AnswerIndex int `json:"answer_index"`
}

// QuizSubmission agrupa las ocho respuestas de un usuario.
type QuizSubmission struct {
	Answers []QuizAnswer `json:"answers"`
	UserID  string       `json:"user_id,omitempty"`
}

// QuizResult es el analisis completo devuelto al enviar el quiz.
type QuizResult struct {
	BrainID         string     `json:"brain_id"`
	Archetype       Archetype  `json:"archetype"`
	ArchetypeName   string     `json:"archetype_name"`
	ArchetypeEmoji  string     `json:"archetype_emoji"`
	Description     string     `json:"description"`
	Strengths       []string   `json:"strengths"`
	Dimensions      Dimensions `json:"dimensions"`
	NodeCount       int        `json:"node_count"`
	ConnectionCount int        `json:"connection_count"`
	CreatedAt       time.Time  `json:"created_at"`
}
