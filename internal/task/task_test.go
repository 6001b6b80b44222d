package task

import (
	"strings"
	"testing"

	"github.com/auralab/aura-bench/internal/dataset"
)

func testItem() *dataset.Item {
	return &dataset.Item{
		VideoID:       "video042",
		Transcript:    "the transcript text",
		VisualCaption: "the visual caption text",
		AudioCaption:  "the audio caption text",
	}
}

func TestGet_AllCategories(t *testing.T) {
	want := map[string]int{
		CausalReasoning:      2,
		PerformerSkill:       2,
		PitchTimbre:          3,
		TempoSync:            1,
		Unanswerability:      2,
		ImplicitDistractions: 2,
	}

	names := Names()
	if len(names) != len(want) {
		t.Fatalf("Names: got %d categories, want %d", len(names), len(want))
	}

	for name, count := range want {
		task, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if task.QuestionsPerClip != count {
			t.Fatalf("%s: questions per clip got %d want %d", name, task.QuestionsPerClip, count)
		}
		if strings.TrimSpace(task.System) == "" {
			t.Fatalf("%s: empty system prompt", name)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := Get("nope"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestGet_Normalizes(t *testing.T) {
	task, err := Get("  Causal_Reasoning ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if task.Category != CausalReasoning {
		t.Fatalf("category: got %q", task.Category)
	}
}

func TestRender_EmbedsTriple(t *testing.T) {
	item := testItem()
	for _, name := range Names() {
		task, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}

		opts := RenderOptions{}
		if task.NeedsSyncStatus {
			opts.SyncStatus = SyncStatusMisaligned
		}

		system, user, err := task.Render(item, opts)
		if err != nil {
			t.Fatalf("%s: Render: %v", name, err)
		}
		if system != task.System {
			t.Fatalf("%s: system prompt mismatch", name)
		}
		for _, text := range []string{item.VideoID, item.Transcript, item.VisualCaption, item.AudioCaption} {
			if !strings.Contains(user, text) {
				t.Fatalf("%s: user prompt missing %q", name, text)
			}
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	task, err := Get(CausalReasoning)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	item := testItem()
	_, first, err := task.Render(item, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	_, second, err := task.Render(item, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Fatal("expected identical prompts for identical input")
	}
}

func TestRender_SyncStatus(t *testing.T) {
	task, err := Get(TempoSync)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if _, _, err := task.Render(testItem(), RenderOptions{}); err == nil {
		t.Fatal("expected error without sync status")
	}
	if _, _, err := task.Render(testItem(), RenderOptions{SyncStatus: "sideways"}); err == nil {
		t.Fatal("expected error for invalid sync status")
	}

	_, user, err := task.Render(testItem(), RenderOptions{SyncStatus: "aligned"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(user, "Alignment status: Aligned") {
		t.Fatalf("user prompt missing canonical status: %q", user)
	}
}

func TestRender_NilItem(t *testing.T) {
	task, err := Get(CausalReasoning)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, _, err := task.Render(nil, RenderOptions{}); err == nil {
		t.Fatal("expected error for nil item")
	}
}
