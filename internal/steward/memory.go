package steward

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	maxRecords     = 20
	summaryRecords = 5 // Recent records included in Summary
)

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Time      float64  `json:"time"`            // Simulated seconds at observation
	Stage     Stage    `json:"stage"`
	Points    int      `json:"points"`
	Cities    int      `json:"cities"`
	Attempted int      `json:"attempted"`
	Applied   int      `json:"applied"`
	Rejected  int      `json:"rejected"`
	Kinds     []string `json:"kinds,omitempty"` // Kinds of applied actions
}

// CycleMemory is a ring of recent cycle records persisted as JSON.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file at path. Returns empty memory if it is
// missing or unreadable. An empty path keeps memory in-process only.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("steward memory corrupted, starting fresh", "path", path, "error", err)
		mem.Records = nil
	}
	return mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal steward memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		slog.Error("failed to write steward memory", "path", m.path, "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Stalled reports whether the last n cycles all applied nothing.
func (m *CycleMemory) Stalled(n int) bool {
	if n <= 0 || len(m.Records) < n {
		return false
	}
	for _, r := range m.Records[len(m.Records)-n:] {
		if r.Applied > 0 {
			return false
		}
	}
	return true
}

// Summary returns a short multi-line digest of the most recent cycles.
func (m *CycleMemory) Summary() string {
	if len(m.Records) == 0 {
		return ""
	}
	var b strings.Builder
	start := 0
	if len(m.Records) > summaryRecords {
		start = len(m.Records) - summaryRecords
	}
	for _, r := range m.Records[start:] {
		fmt.Fprintf(&b, "t=%.0f stage=%s points=%d cities=%d applied=%d/%d",
			r.Time, r.Stage, r.Points, r.Cities, r.Applied, r.Attempted)
		if len(r.Kinds) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(r.Kinds, ","))
		}
		b.WriteString("\n")
	}
	return b.String()
}
