package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	TranscriptsDir    = "transcripts"
	VisualCaptionsDir = "visual_captions"
	AudioCaptionsDir  = "audio_captions"
)

// Item is one video's transcript/caption triple, keyed by the shared
// filename stem.
type Item struct {
	VideoID       string
	Transcript    string
	VisualCaption string
	AudioCaption  string
}

// Skip records why a video was excluded from a run.
type Skip struct {
	VideoID string
	Reason  string
}

// Report summarizes a dataset load.
type Report struct {
	Items   []Item
	Skipped []Skip
}

// Load enumerates transcript stems under root and returns the items whose
// visual and audio captions both exist and are non-empty. Incomplete triples
// are reported in Skipped, never fatal. Items come back in sorted stem order
// so repeated runs process the dataset identically.
func Load(root string) (*Report, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("dataset: empty data directory")
	}

	trnDir := filepath.Join(root, TranscriptsDir)
	entries, err := os.ReadDir(trnDir)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", trnDir, err)
	}

	var stems []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".txt") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(stems)

	if len(stems) == 0 {
		return nil, fmt.Errorf("dataset: no transcript files in %q", trnDir)
	}

	report := &Report{Items: make([]Item, 0, len(stems))}
	for _, stem := range stems {
		item, skip := loadItem(root, stem)
		if skip != nil {
			report.Skipped = append(report.Skipped, *skip)
			continue
		}
		report.Items = append(report.Items, *item)
	}
	return report, nil
}

func loadItem(root, stem string) (*Item, *Skip) {
	visPath := filepath.Join(root, VisualCaptionsDir, stem+".txt")
	audPath := filepath.Join(root, AudioCaptionsDir, stem+".txt")
	trnPath := filepath.Join(root, TranscriptsDir, stem+".txt")

	if !fileExists(visPath) {
		return nil, &Skip{VideoID: stem, Reason: "missing visual caption"}
	}
	if !fileExists(audPath) {
		return nil, &Skip{VideoID: stem, Reason: "missing audio caption"}
	}

	transcript, err := readText(trnPath)
	if err != nil {
		return nil, &Skip{VideoID: stem, Reason: fmt.Sprintf("read transcript: %v", err)}
	}
	visual, err := readText(visPath)
	if err != nil {
		return nil, &Skip{VideoID: stem, Reason: fmt.Sprintf("read visual caption: %v", err)}
	}
	audio, err := readText(audPath)
	if err != nil {
		return nil, &Skip{VideoID: stem, Reason: fmt.Sprintf("read audio caption: %v", err)}
	}

	// A garbled transcript is still usable context; empty captions are not.
	if visual == "" {
		return nil, &Skip{VideoID: stem, Reason: "empty visual caption"}
	}
	if audio == "" {
		return nil, &Skip{VideoID: stem, Reason: "empty audio caption"}
	}

	return &Item{
		VideoID:       stem,
		Transcript:    transcript,
		VisualCaption: visual,
		AudioCaption:  audio,
	}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
