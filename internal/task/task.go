package task

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/auralab/aura-bench/internal/dataset"
)

// Category labels match the released AURA dataset.
const (
	CausalReasoning      = "causal_reasoning"
	PerformerSkill       = "performer_skill_profiling"
	PitchTimbre          = "pitch_timbre_reasoning"
	TempoSync            = "tempo_av_sync_analysis"
	Unanswerability      = "unanswerability"
	ImplicitDistractions = "implicit_distractions"
)

// Ground-truth alignment labels for tempo_av_sync_analysis.
const (
	SyncStatusAligned    = "Aligned"
	SyncStatusMisaligned = "Misaligned"
)

const defaultQuestionsPerClip = 2

// Task describes one AURA question category: its prompt pair and how many
// questions a single clip yields.
type Task struct {
	Category         string
	QuestionsPerClip int
	System           string
	NeedsSyncStatus  bool

	userTmpl *template.Template
}

type promptData struct {
	VideoID       string
	Transcript    string
	VisualCaption string
	AudioCaption  string
	SyncStatus    string
}

// RenderOptions carries per-run inputs that are not part of the item triple.
type RenderOptions struct {
	// SyncStatus is the ground-truth alignment label for the
	// tempo_av_sync_analysis category ("Aligned" or "Misaligned").
	SyncStatus string
}

// Render produces the system and user prompts for one item. Rendering is
// deterministic for a fixed item so generation prompts are reproducible.
func (t *Task) Render(item *dataset.Item, opts RenderOptions) (system string, user string, err error) {
	if t == nil || t.userTmpl == nil {
		return "", "", errors.New("task: nil task")
	}
	if item == nil {
		return "", "", errors.New("task: nil item")
	}

	data := promptData{
		VideoID:       item.VideoID,
		Transcript:    item.Transcript,
		VisualCaption: item.VisualCaption,
		AudioCaption:  item.AudioCaption,
	}

	if t.NeedsSyncStatus {
		status := strings.TrimSpace(opts.SyncStatus)
		if !strings.EqualFold(status, SyncStatusAligned) && !strings.EqualFold(status, SyncStatusMisaligned) {
			return "", "", fmt.Errorf("task: %s requires sync status %q or %q", t.Category, SyncStatusAligned, SyncStatusMisaligned)
		}
		if strings.EqualFold(status, SyncStatusAligned) {
			data.SyncStatus = SyncStatusAligned
		} else {
			data.SyncStatus = SyncStatusMisaligned
		}
	}

	var buf bytes.Buffer
	if err := t.userTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("task: render %s prompt: %w", t.Category, err)
	}
	return t.System, buf.String(), nil
}

var registry = buildRegistry()

// Get returns the task for a category label.
func Get(category string) (*Task, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	t, ok := registry[category]
	if !ok {
		return nil, fmt.Errorf("task: unknown category %q (expected one of %s)", category, strings.Join(Names(), "|"))
	}
	return t, nil
}

// Names lists all registered category labels in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func buildRegistry() map[string]*Task {
	tasks := []*Task{
		{
			Category:         CausalReasoning,
			QuestionsPerClip: 2,
			System:           causalSystemPrompt,
			userTmpl:         mustTemplate(CausalReasoning, causalUserTemplate),
		},
		{
			Category:         PerformerSkill,
			QuestionsPerClip: 2,
			System:           performerSkillSystemPrompt,
			userTmpl:         mustTemplate(PerformerSkill, performerSkillUserTemplate),
		},
		{
			Category:         PitchTimbre,
			QuestionsPerClip: 3,
			System:           pitchTimbreSystemPrompt,
			userTmpl:         mustTemplate(PitchTimbre, pitchTimbreUserTemplate),
		},
		{
			Category:         TempoSync,
			QuestionsPerClip: 1,
			System:           tempoSyncSystemPrompt,
			NeedsSyncStatus:  true,
			userTmpl:         mustTemplate(TempoSync, tempoSyncUserTemplate),
		},
		{
			Category:         Unanswerability,
			QuestionsPerClip: 2,
			System:           unanswerableSystemPrompt,
			userTmpl:         mustTemplate(Unanswerability, unanswerableUserTemplate),
		},
		{
			Category:         ImplicitDistractions,
			QuestionsPerClip: 2,
			System:           implicitDistractionsSystemPrompt,
			userTmpl:         mustTemplate(ImplicitDistractions, implicitDistractionsUserTemplate),
		},
	}

	out := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		if t.QuestionsPerClip <= 0 {
			t.QuestionsPerClip = defaultQuestionsPerClip
		}
		out[t.Category] = t
	}
	return out
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(body))
}
