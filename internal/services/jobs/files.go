package jobs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename strips directories and any character outside
// [A-Za-z0-9_.-]. Whitespace becomes an underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// UniqueFilename appends a timestamp and a short random id:
// barn.mp4 becomes barn_20240101_120000_1a2b3c4d.mp4.
func UniqueFilename(name string, now time.Time) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s_%s%s", base, now.Format("20060102_150405"), uuid.NewString()[:8], ext)
}

// AllowedExtension reports whether name ends in one of allowed, ignoring case.
func AllowedExtension(name string, allowed []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ext != "" && lo.Contains(allowed, ext)
}

// ProcessedName is the output file name for an uploaded video.
func ProcessedName(stored string) string {
	return "processed_" + stored
}
