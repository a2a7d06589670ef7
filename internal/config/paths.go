package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names inside BaseDir and DataDir.
const (
	companiesFileName  = "companies.json"
	discoveredFileName = "discovered_companies.json"
	keywordsFileName   = "keywords.json"
	locationsFileName  = "locations.json"
	dbFileName         = "applications.db"
	jobsFileName       = "devops_jobs.json"
)

// Paths locates every file the job board reads or writes. Build it once with
// NewPaths and pass it to whatever needs it.
type Paths struct {
	BaseDir        string
	DataDir        string
	CompaniesFile  string // curated list, shipped next to the binary
	DiscoveredFile string
	KeywordsFile   string
	LocationsFile  string
	DBPath         string
	JobsFile       string
}

// NewPaths resolves all file locations. An empty dataDir means <baseDir>/data.
func NewPaths(baseDir, dataDir string) Paths {
	baseDir = filepath.Clean(baseDir)
	if dataDir == "" {
		dataDir = filepath.Join(baseDir, "data")
	}
	dataDir = filepath.Clean(dataDir)

	return Paths{
		BaseDir:        baseDir,
		DataDir:        dataDir,
		CompaniesFile:  filepath.Join(baseDir, companiesFileName),
		DiscoveredFile: filepath.Join(dataDir, discoveredFileName),
		KeywordsFile:   filepath.Join(dataDir, keywordsFileName),
		LocationsFile:  filepath.Join(dataDir, locationsFileName),
		DBPath:         filepath.Join(dataDir, dbFileName),
		JobsFile:       filepath.Join(dataDir, jobsFileName),
	}
}

// EnsureDataDir creates the data directory if it does not exist yet.
func (p Paths) EnsureDataDir() error {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", p.DataDir, err)
	}
	return nil
}
