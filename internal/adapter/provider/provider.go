// Package provider implements the Provider API (§6): advertising which
// file extensions this adapter can open, derived from which backend
// demuxers declare the SEEK_TO_PTS capability the read/seek pipeline
// depends on.
package provider

import "log/slog"

// demuxerInfo is the minimal view of a registered backend demuxer the
// extension filter needs.
type demuxerInfo struct {
	shortName string
	seekToPTS bool
}

// demuxerIterator abstracts enumeration of the backend's registered input
// demuxers so the filtering logic is testable without a real FFmpeg
// build; the astiav-backed implementation lives in provider_astiav.go.
type demuxerIterator interface {
	// Next returns the next registered demuxer, or ok == false once
	// enumeration is exhausted.
	Next() (info demuxerInfo, ok bool)
}

// extensionsByShortName is the authoritative short-name → extension
// table (glossary). Short names combining several demuxers (as FFmpeg
// itself registers them, e.g. "mov,mp4,m4a,3gp,3g2,mj2") are listed
// verbatim as the key, matching how the backend reports them.
var extensionsByShortName = map[string][]string{
	"aac":                       {"aac"},
	"aiff":                      {"aif", "aiff"},
	"mp3":                       {"mp3"},
	"mp4":                       {"mp4"},
	"m4v":                       {"m4v"},
	"mov,mp4,m4a,3gp,3g2,mj2":   {"mov", "mp4", "m4a", "3gp", "3g2", "mj2"},
	"opus":                      {"opus"},
	"libopus":                   {"opus"},
	"wav":                       {"wav"},
	"wv":                        {"wv"},
}

// denylist names demuxers that pass the SEEK_TO_PTS filter but are
// deliberately excluded, restoring the source's commented-out
// "codecs with failing tests" / "untested codecs" notes as an explicit,
// documented table rather than a silent absence.
var denylist = map[string]string{
	"flac": "backend seek regressions on FLAC inputs",
	"ogg":  "backend seek regressions on Ogg inputs",
	"ac3":  "untested",
	"caf":  "untested",
	"mpc":  "untested",
	"mpc8": "untested",
	"mpeg": "untested",
	"tak":  "untested",
	"tta":  "untested",
}

// SupportedFileExtensions implements the Provider API (§6): the
// de-duplicated set of file extensions this adapter can open, derived
// from the backend's registered demuxers.
func SupportedFileExtensions(logger *slog.Logger) []string {
	return filterExtensions(newAstiavDemuxerIterator(), logger)
}

// filterExtensions walks it once, keeping demuxers that advertise
// SEEK_TO_PTS, are present in extensionsByShortName, and are not
// denylisted. Excluded demuxers are logged at info per §6.
func filterExtensions(it demuxerIterator, logger *slog.Logger) []string {
	seen := make(map[string]struct{})
	var out []string
	for {
		d, ok := it.Next()
		if !ok {
			break
		}
		if reason, denied := denylist[d.shortName]; denied {
			if logger != nil {
				logger.Info("excluding demuxer", "short_name", d.shortName, "reason", reason)
			}
			continue
		}
		if !d.seekToPTS {
			if logger != nil {
				logger.Info("excluding demuxer", "short_name", d.shortName, "reason", "no SEEK_TO_PTS capability")
			}
			continue
		}
		exts, ok := extensionsByShortName[d.shortName]
		if !ok {
			if logger != nil {
				logger.Info("excluding demuxer", "short_name", d.shortName, "reason", "not in extension table")
			}
			continue
		}
		for _, ext := range exts {
			if _, dup := seen[ext]; dup {
				continue
			}
			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}
	return out
}
