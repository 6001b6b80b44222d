package qa

import (
	"fmt"
	"strings"
)

// OptionKeys is the fixed option layout of every AURA question.
var OptionKeys = []string{"A", "B", "C", "D"}

// Pair is one released question: four options, one correct key, and the
// reasoning that justifies the answer. VideoID and Category are stamped by
// the generator, never by the model.
type Pair struct {
	Question         string            `json:"question"`
	Options          map[string]string `json:"options"`
	CorrectAnswerKey string            `json:"correct_answer_key"`
	GoldReasoning    string            `json:"gold_reasoning"`
	VideoID          string            `json:"video_id,omitempty"`
	Category         string            `json:"category,omitempty"`
	SyncStatus       string            `json:"sync_status,omitempty"`
}

// Validate checks the structural contract a pair must satisfy before it is
// written to the release file.
func Validate(p *Pair) error {
	if p == nil {
		return fmt.Errorf("qa: nil pair")
	}
	if strings.TrimSpace(p.Question) == "" {
		return fmt.Errorf("qa: empty question")
	}
	if len(p.Options) != len(OptionKeys) {
		return fmt.Errorf("qa: got %d options, want %d", len(p.Options), len(OptionKeys))
	}
	for _, key := range OptionKeys {
		text, ok := p.Options[key]
		if !ok {
			return fmt.Errorf("qa: missing option %q", key)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("qa: empty option %q", key)
		}
	}
	if _, ok := p.Options[p.CorrectAnswerKey]; !ok {
		return fmt.Errorf("qa: correct_answer_key %q is not an option", p.CorrectAnswerKey)
	}
	if strings.TrimSpace(p.GoldReasoning) == "" {
		return fmt.Errorf("qa: empty gold_reasoning")
	}
	return nil
}

// Failure records a clip the generator could not turn into questions, with
// the raw model output kept for manual triage.
type Failure struct {
	VideoID     string `json:"video_id"`
	Category    string `json:"category"`
	Reason      string `json:"reason"`
	RawResponse string `json:"raw_response,omitempty"`
}

// ModelResponse is a candidate model's answer to one pair, the input to
// evaluation. Reasoning is optional; without it the factual consistency and
// entailment stages score zero.
type ModelResponse struct {
	Pair
	ModelAnswerKey string `json:"model_answer_key,omitempty"`
	ModelAnswer    string `json:"model_answer,omitempty"`
	ModelReasoning string `json:"model_reasoning,omitempty"`
	CandidateModel string `json:"candidate_model,omitempty"`
}

// Evaluation is the judged outcome for one pair.
type Evaluation struct {
	Question         string  `json:"question"`
	VideoID          string  `json:"video_id,omitempty"`
	Category         string  `json:"category,omitempty"`
	CorrectAnswerKey string  `json:"correct_answer_key"`
	ModelAnswerKey   string  `json:"model_answer_key"`
	IsCorrect        bool    `json:"is_correct"`
	FactualScore     float64 `json:"factual_consistency_score"`
	FactualExplain   string  `json:"factual_consistency_explanation,omitempty"`
	EntailmentScore  float64 `json:"entailment_score"`
	JudgeModel       string  `json:"judge_model,omitempty"`
}

// Summary is the trailing aggregate object of an evaluation file.
type Summary struct {
	Type               string             `json:"type"`
	Total              int                `json:"total"`
	Correct            int                `json:"correct"`
	AnswerAccuracy     float64            `json:"answer_accuracy"`
	FactualConsistency float64            `json:"factual_consistency"`
	CoreInference      float64            `json:"core_inference"`
	PerCategory        map[string]float64 `json:"per_category_accuracy,omitempty"`
}

// SummaryType marks the summary line so record readers can skip it.
const SummaryType = "summary"
