// Package storage persists benchmark sessions: per-frame durations
// plus a metadata record, one directory per session.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pilively/plexus/internal/quality"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SessionMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Preset        string             `json:"preset"`
	ParticleCount int                `json:"particle_count"`
	LinkRadius    float64            `json:"link_radius"`
	TargetFPS     int                `json:"target_fps"`
	Frames        int                `json:"frames"`
	Stats         map[string]float64 `json:"stats"`
}

// Save writes one bench session and returns its id.
func (s *Store) Save(p quality.Preset, frames []time.Duration, stats map[string]float64) (string, error) {
	id := fmt.Sprintf("%s_%d", p.Name, time.Now().Unix())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := SessionMetadata{
		ID:            id,
		Timestamp:     time.Now(),
		Preset:        p.Name,
		ParticleCount: p.ParticleCount,
		LinkRadius:    p.LinkRadius,
		TargetFPS:     p.TargetFPS,
		Frames:        len(frames),
		Stats:         stats,
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"frame", "seconds"}); err != nil {
		return "", err
	}
	for i, d := range frames {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(d.Seconds(), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return id, nil
}

// Load reads one session's metadata.
func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads one session's per-frame durations.
func (s *Store) LoadFrames(id string) ([]time.Duration, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]time.Duration, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		secs, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s frames.csv row %d: %w", id, i, err)
		}
		frames = append(frames, time.Duration(secs*float64(time.Second)))
	}
	return frames, nil
}

// List returns all sessions, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}
