package judge

import "text/template"

// The evaluator runs up to three judge stages per answer. Answer
// correctness compares the candidate's free-text answer against the gold
// option. Factual consistency scores the candidate's reasoning against the
// gold reasoning. Core inference first strips both reasonings down to their
// central claim, then asks whether the candidate's claim follows from the
// gold one.

const answerSystemPrompt = `You judge whether a model's answer to a multiple-choice question matches the correct option. The model answered in free text; it matches if it clearly selects the correct option by letter or by restating its content. Partial or hedged answers do not match.

Respond with ONLY a JSON object: {"is_correct": true} or {"is_correct": false}.`

var answerUserTmpl = template.Must(template.New("answer").Parse(`Question:
{{.Question}}

Options:
{{range $key, $text := .Options}}{{$key}}. {{$text}}
{{end}}
Correct option: {{.CorrectKey}}. {{.CorrectText}}

Model answer:
{{.ModelAnswer}}

Judge the answer now.`))

const factualSystemPrompt = `You judge whether a model's reasoning for a benchmark answer is factually consistent with the reference reasoning. Score 1.0 when every claim in the model's reasoning agrees with the reference, 0.5 when the core claim agrees but details conflict or are fabricated, 0.0 when the core claim conflicts with the reference.

Respond with ONLY a JSON object: {"factual_consistency_score": <0.0, 0.5, or 1.0>, "explanation": "<one sentence>"}.`

var factualUserTmpl = template.Must(template.New("factual").Parse(`Question:
{{.Question}}

Reference reasoning:
{{.GoldReasoning}}

Model reasoning:
{{.ModelReasoning}}

Score the model reasoning now.`))

const sanitizeSystemPrompt = `You compress a reasoning passage into its single central claim. Strip hedging, restatements of the question, and meta commentary. Keep the one factual assertion that justifies the answer.

Respond with ONLY the claim as one plain sentence. No JSON, no quotes, no preamble.`

var sanitizeUserTmpl = template.Must(template.New("sanitize").Parse(`Reasoning:
{{.Reasoning}}

State the central claim now.`))

const entailSystemPrompt = `You judge logical entailment between two claims about the same video clip. The hypothesis is entailed when a reader who accepts the premise must also accept the hypothesis. Contradiction or mere topical overlap is not entailment.

Respond with ONLY a JSON object: {"entails": true} or {"entails": false}.`

var entailUserTmpl = template.Must(template.New("entail").Parse(`Premise:
{{.Premise}}

Hypothesis:
{{.Hypothesis}}

Judge entailment now.`))
