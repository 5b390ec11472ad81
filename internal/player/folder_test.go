package player

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	perrors "github.com/tessro/slotplayer/internal/errors"
)

func writeFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSlotFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"0_intro.mp4", 0, false},
		{"12_loop_b.mov", 12, false},
		{"007_bond.mkv", 7, false},
		{"intro.mp4", 0, true},
		{"x_intro.mp4", 0, true},
		{"_intro.mp4", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SlotFromFilename(tt.name)
			if tt.wantErr {
				if !errors.Is(err, perrors.ErrBadFilenamePattern) {
					t.Errorf("SlotFromFilename(%q) error = %v, want ErrBadFilenamePattern", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SlotFromFilename(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("SlotFromFilename(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.mp4":     true,
		"a.MOV":     true,
		"a.ogv":     true,
		"a.m4v":     true,
		"notes.txt": false,
		"mp4":       false,
		"a.mp4.bak": false,
	} {
		if got := IsVideoFile(name); got != want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoadFolder(t *testing.T) {
	dir := writeFiles(t, "0_intro.mp4", "2_outro.mov", "readme.txt", "1_notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "3_dir.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}
	s, _ := newTestSession(t, 4)

	result, err := s.LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder() error = %v", err)
	}
	if !reflect.DeepEqual(result.Data, []int{0, 2}) {
		t.Errorf("loaded slots = %v, want [0 2]", result.Data)
	}
	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.ErrorSummary())
	}

	info, _ := s.Info(2)
	if info.Path != filepath.Join(dir, "2_outro.mov") {
		t.Errorf("Info(2).Path = %q", info.Path)
	}
	if s.IsLoaded(1) || s.IsLoaded(3) {
		t.Error("non-video entries were loaded")
	}
}

func TestLoadFolderAbortsOnBadName(t *testing.T) {
	// Lexical order: 0_intro, 2_outro, 3_late, bad, z_late.
	dir := writeFiles(t, "0_intro.mp4", "2_outro.mp4", "bad.mp4", "3_late.mp4", "z_late.mp4")
	s, _ := newTestSession(t, 4)

	result, err := s.LoadFolder(dir)
	if !errors.Is(err, perrors.ErrBadFilenamePattern) {
		t.Fatalf("LoadFolder() error = %v, want ErrBadFilenamePattern", err)
	}
	if !reflect.DeepEqual(result.Data, []int{0, 2, 3}) {
		t.Errorf("loaded before abort = %v, want [0 2 3]", result.Data)
	}
	for _, idx := range []int{0, 2, 3} {
		if !s.IsLoaded(idx) {
			t.Errorf("slot %d not kept after abort", idx)
		}
	}
}

func TestLoadFolderSkipsOutOfRange(t *testing.T) {
	dir := writeFiles(t, "1_a.mp4", "9_big.mp4", "2_b.mp4")
	s, eng := newTestSession(t, 3)

	result, err := s.LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder() error = %v", err)
	}
	if !reflect.DeepEqual(result.Data, []int{1, 2}) {
		t.Errorf("loaded slots = %v, want [1 2]", result.Data)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], perrors.ErrSlotOutOfRange) {
		t.Errorf("errors = %v, want one ErrSlotOutOfRange", result.Errors)
	}
	if _, opened := eng.movies[filepath.Join(dir, "9_big.mp4")]; opened {
		t.Error("out-of-range entry was opened")
	}
}

func TestLoadFolderAbortsOnLoadFailure(t *testing.T) {
	dir := writeFiles(t, "0_a.mp4", "1_broken.mp4", "2_c.mp4")
	s, eng := newTestSession(t, 3)
	eng.failing[filepath.Join(dir, "1_broken.mp4")] = true

	result, err := s.LoadFolder(dir)
	if !errors.Is(err, perrors.ErrLoadFailure) {
		t.Fatalf("LoadFolder() error = %v, want ErrLoadFailure", err)
	}
	if !reflect.DeepEqual(result.Data, []int{0}) {
		t.Errorf("loaded slots = %v, want [0]", result.Data)
	}
	if s.IsLoaded(2) {
		t.Error("entry after the failed load was processed")
	}
}

func TestLoadFolderMissingDir(t *testing.T) {
	s, _ := newTestSession(t, 2)
	if _, err := s.LoadFolder(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("LoadFolder() on a missing folder returned nil")
	}
}
