// Package interview scores mock interview sessions and summarizes finished ones.
package interview

import (
	"github.com/jonathan/cv-optimizer/internal/capability"
)

// Score thresholds used by the summary.
const (
	StrongAreaThreshold = 75.0
	excellentThreshold  = 90.0
	fairThreshold       = 60.0
	topListSize         = 5
)

// Answer is an evaluated answer to one question of a session.
type Answer struct {
	QuestionType capability.QuestionType
	Score        float64
	Strengths    []string
	Improvements []string
}

// TypeAverage is the mean score for one question type.
type TypeAverage struct {
	Type    capability.QuestionType `json:"type"`
	Label   string                  `json:"label"`
	Average float64                 `json:"average"`
	Count   int                     `json:"count"`
}

// Summary describes a completed session.
type Summary struct {
	OverallScore      float64       `json:"overallScore"`
	TotalQuestions    int           `json:"totalQuestions"`
	AnsweredQuestions int           `json:"answeredQuestions"`
	TypeAverages      []TypeAverage `json:"typeAverages"`
	StrongAreas       []string      `json:"strongAreas"`
	ImprovementAreas  []string      `json:"improvementAreas"`
	GeneralFeedback   string        `json:"generalFeedback"`
	NextSteps         []string      `json:"nextSteps"`
	AllStrengths      []string      `json:"allStrengths"`
	AllImprovements   []string      `json:"allImprovements"`
}

// Progress is the state of a session after an answer is recorded.
type Progress struct {
	AnsweredCount  int     `json:"answeredCount"`
	TotalQuestions int     `json:"totalQuestions"`
	IsLast         bool    `json:"isLastQuestion"`
	OverallScore   float64 `json:"overallScore"`
}

// Tally computes session progress from the scores of every answered question,
// the one just recorded included.
func Tally(scores []float64, totalQuestions int) Progress {
	answered := len(scores)
	return Progress{
		AnsweredCount:  answered,
		TotalQuestions: totalQuestions,
		IsLast:         totalQuestions > 0 && answered >= totalQuestions,
		OverallScore:   Mean(scores),
	}
}

// Mean returns the average of scores, or 0 when there are none.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Summarize builds the summary of a completed session.
// overallScore is the stored session score; answers are the answered questions in question order.
func Summarize(overallScore float64, totalQuestions int, answers []Answer) Summary {
	averages := typeAverages(answers)

	strong := []string{}
	weak := []string{}
	for _, avg := range averages {
		if avg.Average >= StrongAreaThreshold {
			strong = append(strong, avg.Label)
		} else {
			weak = append(weak, avg.Label)
		}
	}

	var strengths, improvements []string
	for _, a := range answers {
		strengths = append(strengths, a.Strengths...)
		improvements = append(improvements, a.Improvements...)
	}

	return Summary{
		OverallScore:      overallScore,
		TotalQuestions:    totalQuestions,
		AnsweredQuestions: len(answers),
		TypeAverages:      averages,
		StrongAreas:       strong,
		ImprovementAreas:  weak,
		GeneralFeedback:   GeneralFeedback(overallScore),
		NextSteps:         NextSteps(overallScore, weak),
		AllStrengths:      firstUnique(strengths, topListSize),
		AllImprovements:   firstUnique(improvements, topListSize),
	}
}

// typeAverages groups answers by question type, keeping first-appearance order.
func typeAverages(answers []Answer) []TypeAverage {
	var order []capability.QuestionType
	sums := make(map[capability.QuestionType]float64)
	counts := make(map[capability.QuestionType]int)
	for _, a := range answers {
		if _, seen := counts[a.QuestionType]; !seen {
			order = append(order, a.QuestionType)
		}
		sums[a.QuestionType] += a.Score
		counts[a.QuestionType]++
	}

	out := make([]TypeAverage, 0, len(order))
	for _, qt := range order {
		out = append(out, TypeAverage{
			Type:    qt,
			Label:   qt.Label(),
			Average: sums[qt] / float64(counts[qt]),
			Count:   counts[qt],
		})
	}
	return out
}

// GeneralFeedback picks the headline message for an overall score.
func GeneralFeedback(score float64) string {
	switch {
	case score >= excellentThreshold:
		return "Excellent performance! You are well prepared for this interview."
	case score >= StrongAreaThreshold:
		return "Good performance. A little more practice in a few areas will make you even stronger."
	case score >= fairThreshold:
		return "Fair performance. Focus on the improvement areas below before the real interview."
	default:
		return "Needs more preparation. Work through the suggested next steps and try again."
	}
}

// NextSteps lists follow-up actions for a score and the labels of weak question types.
func NextSteps(score float64, improvementAreas []string) []string {
	var steps []string
	if score < excellentThreshold {
		steps = append(steps, "Structure your answers with the STAR method (Situation, Task, Action, Result).")
	}
	if contains(improvementAreas, capability.QuestionTechnical.Label()) {
		steps = append(steps, "Practice the technical topics listed in the job posting.")
	}
	if contains(improvementAreas, capability.QuestionBehavioral.Label()) {
		steps = append(steps, "Prepare concrete examples from your past experience.")
	}
	if score < StrongAreaThreshold {
		steps = append(steps, "Run more mock interviews to build confidence.")
	}
	steps = append(steps, "Repeat this simulation for other positions you are targeting.")
	return steps
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// firstUnique returns up to n distinct values in first-seen order.
func firstUnique(values []string, n int) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}
