package entity

import "time"

type DifficultyLevel string

const (
	LevelBeginner     DifficultyLevel = "beginner"
	LevelIntermediate DifficultyLevel = "intermediate"
	LevelAdvanced     DifficultyLevel = "advanced"
)

// Levels lists the difficulty levels in presentation order.
var Levels = []DifficultyLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}

func (l DifficultyLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type ExerciseType string

const (
	TypeLetterRecognition ExerciseType = "letter_recognition"
	TypeSyllableFormation ExerciseType = "syllable_formation"
	TypeWordCompletion    ExerciseType = "word_completion"
	TypeSentenceFormation ExerciseType = "sentence_formation"
	TypeTextComprehension ExerciseType = "text_comprehension"
)

type Progress struct {
	ExercisesCompleted  int     `json:"exercisesCompleted"`
	CorrectAnswers      int     `json:"correctAnswers"`
	IncorrectAnswers    int     `json:"incorrectAnswers"`
	AverageResponseTime float64 `json:"averageResponseTime"` // milliseconds
}

// WithCompletion folds one answered exercise into the counters and keeps
// AverageResponseTime as the running mean over ExercisesCompleted.
func (p Progress) WithCompletion(isCorrect bool, responseTimeMs int64) Progress {
	total := float64(p.ExercisesCompleted)
	p.AverageResponseTime = (p.AverageResponseTime*total + float64(responseTimeMs)) / (total + 1)
	p.ExercisesCompleted++
	if isCorrect {
		p.CorrectAnswers++
	} else {
		p.IncorrectAnswers++
	}
	return p
}

// Student is a roster entry. Progress is a pointer so that a record the
// backend sent without progress can be told apart from an all-zero one.
type Student struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CurrentLevel DifficultyLevel `json:"currentLevel"`
	Progress     *Progress       `json:"progress"`
}

type Exercise struct {
	ID              string          `json:"id"`
	Type            ExerciseType    `json:"type"`
	DifficultyLevel DifficultyLevel `json:"difficultyLevel"`
	Content         string          `json:"content"`
	Options         []string        `json:"options,omitempty"`
	CorrectAnswer   *string         `json:"correctAnswer,omitempty"`
	TimeLimit       int             `json:"timeLimit,omitempty"` // seconds
}

// HasOptions reports whether the exercise is answered by picking an option.
func (e Exercise) HasOptions() bool {
	return len(e.Options) > 0
}

// Request body for POST /evaluation
type StudentResponse struct {
	StudentID      string    `json:"studentId" validate:"required"`
	ExerciseID     string    `json:"exerciseId" validate:"required"`
	Answer         string    `json:"answer"`
	ResponseTimeMs int64     `json:"responseTimeMs" validate:"gte=0"`
	Timestamp      time.Time `json:"timestamp"`
}

type EvaluationResult struct {
	StudentID                 string        `json:"studentId"`
	ExerciseID                string        `json:"exerciseId"`
	IsCorrect                 bool          `json:"isCorrect"`
	Feedback                  string        `json:"feedback"`
	SuggestedNextExerciseType *ExerciseType `json:"suggestedNextExerciseType,omitempty"`
}

// Session host requests

type LoginRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

type AnswerRequest struct {
	Answer *string `json:"answer" validate:"required_without=Option"`
	Option *string `json:"option" validate:"required_without=Answer"`
}
