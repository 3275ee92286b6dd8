package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"gopkg.in/yaml.v3"
)

// LocationsFile is the YAML document listing branch geofences.
type LocationsFile struct {
	Locations []attendance.WorkLocation `yaml:"locations"`
}

// LoadWorkLocations reads the branch geofences. A missing file yields no locations,
// which leaves the geofence unconfigured.
func LoadWorkLocations(path string) ([]attendance.WorkLocation, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Work locations file not found, geofence disabled", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open work locations: %w", err)
	}
	defer f.Close()

	var doc LocationsFile
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode work locations: %w", err)
	}

	for i, loc := range doc.Locations {
		if loc.BranchID == "" {
			return nil, fmt.Errorf("work location %d: branch_id is required", i)
		}
		if loc.Center.Latitude < -90 || loc.Center.Latitude > 90 ||
			loc.Center.Longitude < -180 || loc.Center.Longitude > 180 {
			return nil, fmt.Errorf("work location %q: center out of range", loc.BranchID)
		}
	}

	return doc.Locations, nil
}

// FindWorkLocation returns the geofence for branchID, or nil when there is none.
func FindWorkLocation(locations []attendance.WorkLocation, branchID string) *attendance.WorkLocation {
	for i := range locations {
		if locations[i].BranchID == branchID {
			loc := locations[i]
			return &loc
		}
	}
	return nil
}
