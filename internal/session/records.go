package session

import (
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
)

const DemoStudentID = "demo-student"

// DemoStudent is the single roster entry used when the backend has none to offer.
func DemoStudent() entity.Student {
	return entity.Student{
		ID:           DemoStudentID,
		Name:         "Estudiante Demo",
		CurrentLevel: entity.LevelBeginner,
		Progress:     &entity.Progress{},
	}
}

func answer(s string) *string {
	return &s
}

// DemoExercises returns the built-in set for a level. Advanced has none.
func DemoExercises(level entity.DifficultyLevel) []entity.Exercise {
	switch level {
	case entity.LevelBeginner:
		return []entity.Exercise{
			{
				ID:              "demo-letter-1",
				Type:            entity.TypeLetterRecognition,
				DifficultyLevel: level,
				Content:         "¿Qué letra es esta? A",
				Options:         []string{"A", "E", "I", "O"},
				CorrectAnswer:   answer("A"),
				TimeLimit:       30,
			},
			{
				ID:              "demo-letter-2",
				Type:            entity.TypeLetterRecognition,
				DifficultyLevel: level,
				Content:         "¿Qué letra es esta? M",
				Options:         []string{"N", "M", "W", "U"},
				CorrectAnswer:   answer("M"),
				TimeLimit:       30,
			},
			{
				ID:              "demo-syllable-1",
				Type:            entity.TypeSyllableFormation,
				DifficultyLevel: level,
				Content:         "Une las letras M + A",
				CorrectAnswer:   answer("MA"),
				TimeLimit:       45,
			},
		}
	case entity.LevelIntermediate:
		return []entity.Exercise{
			{
				ID:              "demo-word-1",
				Type:            entity.TypeWordCompletion,
				DifficultyLevel: level,
				Content:         "Completa la palabra: CA_A",
				Options:         []string{"S", "M", "P"},
				CorrectAnswer:   answer("S"),
				TimeLimit:       45,
			},
			{
				ID:              "demo-word-2",
				Type:            entity.TypeWordCompletion,
				DifficultyLevel: level,
				Content:         "Escribe la palabra que falta: El ___ ladra.",
				CorrectAnswer:   answer("perro"),
				TimeLimit:       60,
			},
		}
	default:
		return nil
	}
}

func zeroProgress() *entity.Progress {
	return &entity.Progress{}
}

// BackfillProgress returns a copy of s that always carries a Progress.
func BackfillProgress(s entity.Student) entity.Student {
	if s.Progress == nil {
		s.Progress = zeroProgress()
		return s
	}
	p := *s.Progress
	s.Progress = &p
	return s
}

// DropMissingIDs removes exercises without an id. It never repairs them.
func DropMissingIDs(exercises []entity.Exercise) (kept []entity.Exercise, dropped int) {
	kept = make([]entity.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if ex.ID == "" {
			dropped++
			continue
		}
		kept = append(kept, ex)
	}
	return kept, dropped
}

// DedupeByID keeps the first exercise seen for every id, in original order.
func DedupeByID(exercises []entity.Exercise) (unique []entity.Exercise, duplicates int) {
	seen := make(map[string]struct{}, len(exercises))
	unique = make([]entity.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if _, ok := seen[ex.ID]; ok {
			duplicates++
			continue
		}
		seen[ex.ID] = struct{}{}
		unique = append(unique, ex)
	}
	return unique, duplicates
}

func cloneStudent(s entity.Student) entity.Student {
	return BackfillProgress(s)
}

func cloneStudents(in []entity.Student) []entity.Student {
	out := make([]entity.Student, len(in))
	for i, s := range in {
		out[i] = cloneStudent(s)
	}
	return out
}

func cloneExercise(ex entity.Exercise) entity.Exercise {
	if ex.Options != nil {
		ex.Options = append([]string(nil), ex.Options...)
	}
	if ex.CorrectAnswer != nil {
		ex.CorrectAnswer = answer(*ex.CorrectAnswer)
	}
	return ex
}

func cloneExercises(in []entity.Exercise) []entity.Exercise {
	out := make([]entity.Exercise, len(in))
	for i, ex := range in {
		out[i] = cloneExercise(ex)
	}
	return out
}
