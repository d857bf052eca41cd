package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/zsefvlol/timezonemapper"

	"github.com/nunatech/sila/internal/weather"
)

// builtinLocations is the fixed set of tracked Greenland settlements. Loaded
// once at startup; never refreshed remotely.
var builtinLocations = []weather.Location{
	{ID: "nuuk", Name: "Nuuk", Region: "Sermersooq", Latitude: 64.1748, Longitude: -51.7381},
	{ID: "sisimiut", Name: "Sisimiut", Region: "Qeqqata", Latitude: 66.9395, Longitude: -53.6735},
	{ID: "ilulissat", Name: "Ilulissat", Region: "Avannaata", Latitude: 69.2198, Longitude: -51.0986},
	{ID: "qaqortoq", Name: "Qaqortoq", Region: "Kujalleq", Latitude: 60.7184, Longitude: -46.0356},
	{ID: "aasiaat", Name: "Aasiaat", Region: "Qeqertalik", Latitude: 68.7097, Longitude: -52.8694},
	{ID: "maniitsoq", Name: "Maniitsoq", Region: "Qeqqata", Latitude: 65.4167, Longitude: -52.9000},
	{ID: "tasiilaq", Name: "Tasiilaq", Region: "Sermersooq", Latitude: 65.6145, Longitude: -37.6368},
	{ID: "paamiut", Name: "Paamiut", Region: "Sermersooq", Latitude: 61.9940, Longitude: -49.6678},
	{ID: "narsaq", Name: "Narsaq", Region: "Kujalleq", Latitude: 60.9119, Longitude: -46.0508},
	{ID: "nanortalik", Name: "Nanortalik", Region: "Kujalleq", Latitude: 60.1425, Longitude: -45.2397},
	{ID: "uummannaq", Name: "Uummannaq", Region: "Avannaata", Latitude: 70.6747, Longitude: -52.1264},
	{ID: "upernavik", Name: "Upernavik", Region: "Avannaata", Latitude: 72.7868, Longitude: -56.1549},
	{ID: "qasigiannguit", Name: "Qasigiannguit", Region: "Qeqertalik", Latitude: 68.8193, Longitude: -51.1922},
	{ID: "qeqertarsuaq", Name: "Qeqertarsuaq", Region: "Qeqertalik", Latitude: 69.2472, Longitude: -53.5368},
	{ID: "kangerlussuaq", Name: "Kangerlussuaq", Region: "Qeqqata", Latitude: 67.0086, Longitude: -50.6894},
	{ID: "ittoqqortoormiit", Name: "Ittoqqortoormiit", Region: "Sermersooq", Latitude: 70.4853, Longitude: -21.9667},
	{ID: "qaanaaq", Name: "Qaanaaq", Region: "Avannaata", Latitude: 77.4840, Longitude: -69.3632},
	{ID: "narsarsuaq", Name: "Narsarsuaq", Region: "Kujalleq", Latitude: 61.1567, Longitude: -45.4254},
	{ID: "kulusuk", Name: "Kulusuk", Region: "Sermersooq", Latitude: 65.5736, Longitude: -37.1835},
	{ID: "kangaatsiaq", Name: "Kangaatsiaq", Region: "Qeqertalik", Latitude: 68.3065, Longitude: -53.4641},
	{ID: "ivittuut", Name: "Ivittuut", Region: "Kujalleq", Latitude: 61.2064, Longitude: -48.1714},
}

// LoadLocations returns the built-in location set, optionally extended from
// a JSON file, with country and timezone filled in. IDs must be unique.
func LoadLocations(extraFile string) ([]weather.Location, error) {
	locs := make([]weather.Location, len(builtinLocations))
	copy(locs, builtinLocations)

	if extraFile != "" {
		extra, err := loadLocationFile(extraFile)
		if err != nil {
			return nil, err
		}
		locs = append(locs, extra...)
	}

	seen := make(map[string]bool, len(locs))
	for i := range locs {
		loc := &locs[i]
		if loc.ID == "" || loc.Name == "" {
			return nil, fmt.Errorf("location %d: id and name are required", i)
		}
		if seen[loc.ID] {
			return nil, fmt.Errorf("duplicate location id %q", loc.ID)
		}
		seen[loc.ID] = true

		if loc.Country == "" {
			loc.Country = "Greenland"
		}
		if loc.Timezone == "" {
			loc.Timezone = timezonemapper.LatLngToTimezoneString(loc.Latitude, loc.Longitude)
		}
	}

	return locs, nil
}

// loadLocationFile reads a JSON array of location objects. The entries are
// decoded loosely so hand-written files with string-typed numbers still load.
func loadLocationFile(path string) ([]weather.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse locations file: %w", err)
	}

	locs := make([]weather.Location, 0, len(raw))
	for i, entry := range raw {
		var loc weather.Location
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &loc,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(entry); err != nil {
			return nil, fmt.Errorf("locations file entry %d: %w", i, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
