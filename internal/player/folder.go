package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	perrors "github.com/tessro/slotplayer/internal/errors"
)

// maxPrefixLen bounds how far into a filename the slot separator may appear.
const maxPrefixLen = 100

var videoExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
	".mpg": true,
	".avi": true,
	".ogv": true,
	".m4v": true,
	".mov": true,
}

// IsVideoFile reports whether name has a recognized video extension.
func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// SlotFromFilename parses the slot index from a "<slot>_<descr>.<ext>" name.
func SlotFromFilename(name string) (int, error) {
	sep := strings.Index(name, "_")
	if sep < 0 || sep >= maxPrefixLen {
		return 0, fmt.Errorf("%s: %w", name, perrors.ErrBadFilenamePattern)
	}
	idx, err := strconv.Atoi(name[:sep])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, perrors.ErrBadFilenamePattern)
	}
	return idx, nil
}

// LoadFolder loads every video in dir into the slot named by its filename
// prefix, in lexical filename order. A malformed filename or a failed load
// aborts the remaining entries; slots loaded before the abort stay loaded.
// Entries naming an out-of-range slot are skipped and reported in the result.
func (s *Session) LoadFolder(dir string) (*perrors.PartialResult[[]int], error) {
	result := &perrors.PartialResult[[]int]{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("read folder %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsVideoFile(name) {
			continue
		}
		s.log.Debug().Str("file", name).Msg("loadFolder: loading")

		idx, err := SlotFromFilename(name)
		if err != nil {
			s.log.Error().Str("filename", name).Msg("loadfolder: filename should have the format XXX_descr.ext")
			return result, err
		}

		if err := s.checkSlot(idx); err != nil {
			s.log.Error().Int("slot", idx).Str("filename", name).Msg("loadfolder: slot out of range")
			result.AddError(fmt.Errorf("%s: %w", name, err))
			continue
		}

		path := filepath.Join(dir, name)
		if err := s.Load(idx, path); err != nil {
			s.log.Error().Err(err).Str("filename", name).Msg("could not load clip")
			return result, err
		}
		result.Data = append(result.Data, idx)
	}

	return result, nil
}
