package ergast

import "encoding/json"

// ChampionRecord is the flattened form of a season's driver-standings payload.
type ChampionRecord struct {
	Season     string
	DriverID   string
	GivenName  string
	FamilyName string
}

// RaceWinnerRecord is the flattened form of a single race's winner.
type RaceWinnerRecord struct {
	Season           string
	Round            string
	GpName           string
	WinnerID         string
	WinnerGivenName  string
	WinnerFamilyName string
}

// Upstream payload shapes. Every level may be absent; decoding into these
// structs leaves zero values behind rather than failing.
type driverPayload struct {
	DriverID   string `json:"driverId"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

type standingsResponse struct {
	MRData struct {
		StandingsTable struct {
			Season         string `json:"season"`
			StandingsLists []struct {
				DriverStandings []struct {
					Driver driverPayload `json:"Driver"`
				} `json:"DriverStandings"`
			} `json:"StandingsLists"`
		} `json:"StandingsTable"`
	} `json:"MRData"`
}

type resultsResponse struct {
	MRData struct {
		RaceTable struct {
			Season string `json:"season"`
			Races  []struct {
				Season   string `json:"season"`
				Round    string `json:"round"`
				RaceName string `json:"raceName"`
				Results  []struct {
					Driver driverPayload `json:"Driver"`
				} `json:"Results"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

// MapChampion flattens a driver-standings payload. It never fails: missing
// or malformed fields degrade to empty strings. Callers must treat a record
// with an empty Season as unusable.
func MapChampion(raw []byte) ChampionRecord {
	var payload standingsResponse
	_ = json.Unmarshal(raw, &payload)

	rec := ChampionRecord{Season: payload.MRData.StandingsTable.Season}

	lists := payload.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 || len(lists[0].DriverStandings) == 0 {
		return rec
	}

	drv := lists[0].DriverStandings[0].Driver
	rec.DriverID = drv.DriverID
	rec.GivenName = drv.GivenName
	rec.FamilyName = drv.FamilyName
	return rec
}

// RaceCount reports how many races a results payload contains.
func RaceCount(raw []byte) int {
	var payload resultsResponse
	_ = json.Unmarshal(raw, &payload)
	return len(payload.MRData.RaceTable.Races)
}

// MapRaceWinner flattens the race at idx in a results payload. The second
// return value is false when no race exists at that index; winner fields of
// an existing race degrade to empty strings when the results list is empty.
func MapRaceWinner(raw []byte, idx int) (RaceWinnerRecord, bool) {
	var payload resultsResponse
	_ = json.Unmarshal(raw, &payload)

	races := payload.MRData.RaceTable.Races
	if idx < 0 || idx >= len(races) {
		return RaceWinnerRecord{}, false
	}

	race := races[idx]
	rec := RaceWinnerRecord{
		Season: race.Season,
		Round:  race.Round,
		GpName: race.RaceName,
	}
	if rec.Season == "" {
		rec.Season = payload.MRData.RaceTable.Season
	}

	if len(race.Results) > 0 {
		drv := race.Results[0].Driver
		rec.WinnerID = drv.DriverID
		rec.WinnerGivenName = drv.GivenName
		rec.WinnerFamilyName = drv.FamilyName
	}
	return rec, true
}
