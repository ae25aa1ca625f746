package store

import (
	"regexp"
	"strings"

	"github.com/cormacd/f1api/ergast"
)

// Field limits and charsets. Writes never trust upstream input verbatim:
// fields are trimmed and capped, then checked against these before any row
// is touched. A record that still fails is dropped, not persisted partially.
const (
	maxIDLen   = 30
	maxNameLen = 50
)

var (
	driverIDRe = regexp.MustCompile(`^[a-z0-9_-]{1,30}$`)
	nameRe     = regexp.MustCompile(`^\p{L}[\p{L} '-]{0,49}$`)
	seasonRe   = regexp.MustCompile(`^\d{4}$`)
	roundRe    = regexp.MustCompile(`^\d{1,2}$`)
)

// unsafeFragments covers script injection, SQL comment/statement chaining,
// path traversal and shell substitution. Apostrophes are deliberately not
// listed – they are legitimate in names and every query is parameterized.
var unsafeFragments = []string{
	"<script", "</", "--", ";", `"`, "../", `..\`, "|", "&", "$(", "`",
}

func sanitizeID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > maxIDLen {
		s = s[:maxIDLen]
	}
	return s
}

// sanitizeName trims and caps to maxNameLen runes. Names are UTF-8 upstream
// (Räikkönen, Pérez) so the cap must never split a multi-byte rune.
func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxNameLen {
		s = string(r[:maxNameLen])
	}
	return s
}

func containsUnsafe(fields ...string) bool {
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, frag := range unsafeFragments {
			if strings.Contains(lower, frag) {
				return true
			}
		}
	}
	return false
}

func validName(s string) bool {
	return nameRe.MatchString(s)
}

// sanitizeChampion returns the cleaned record and whether it is safe to
// persist.
func sanitizeChampion(rec ergast.ChampionRecord) (ergast.ChampionRecord, bool) {
	clean := ergast.ChampionRecord{
		Season:     strings.TrimSpace(rec.Season),
		DriverID:   sanitizeID(rec.DriverID),
		GivenName:  sanitizeName(rec.GivenName),
		FamilyName: sanitizeName(rec.FamilyName),
	}

	if !seasonRe.MatchString(clean.Season) {
		return clean, false
	}
	if !driverIDRe.MatchString(clean.DriverID) {
		return clean, false
	}
	if !validName(clean.GivenName) || !validName(clean.FamilyName) {
		return clean, false
	}
	if containsUnsafe(clean.GivenName, clean.FamilyName) {
		return clean, false
	}
	return clean, true
}

// sanitizeRaceWinner returns the cleaned record and whether it is safe to
// persist.
func sanitizeRaceWinner(rec ergast.RaceWinnerRecord) (ergast.RaceWinnerRecord, bool) {
	clean := ergast.RaceWinnerRecord{
		Season:           strings.TrimSpace(rec.Season),
		Round:            strings.TrimSpace(rec.Round),
		GpName:           sanitizeName(rec.GpName),
		WinnerID:         sanitizeID(rec.WinnerID),
		WinnerGivenName:  sanitizeName(rec.WinnerGivenName),
		WinnerFamilyName: sanitizeName(rec.WinnerFamilyName),
	}

	if !seasonRe.MatchString(clean.Season) || !roundRe.MatchString(clean.Round) {
		return clean, false
	}
	if !driverIDRe.MatchString(clean.WinnerID) {
		return clean, false
	}
	if !validName(clean.WinnerGivenName) || !validName(clean.WinnerFamilyName) {
		return clean, false
	}
	if containsUnsafe(clean.GpName, clean.WinnerGivenName, clean.WinnerFamilyName) {
		return clean, false
	}
	return clean, true
}
