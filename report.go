package keytheme

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report is the YAML form of a run summary.
type Report struct {
	File      string           `yaml:"file,omitempty"`
	Roots     int              `yaml:"roots"`
	Visited   int              `yaml:"visited"`
	Records   int              `yaml:"records"`
	Unstyled  int              `yaml:"unstyled"`
	Rows      int              `yaml:"rows"`
	Themes    []string         `yaml:"themes"`
	Empty     bool             `yaml:"empty"`
	Skipped   []ReportSkip     `yaml:"skipped,omitempty"`
	Conflicts []ReportConflict `yaml:"conflicts,omitempty"`
}

type ReportSkip struct {
	NodeID string `yaml:"node_id,omitempty"`
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
}

type ReportConflict struct {
	Key      string `yaml:"key"`
	Theme    string `yaml:"theme"`
	Previous string `yaml:"previous"`
	Value    string `yaml:"value"`
	NodeID   string `yaml:"node_id,omitempty"`
}

// NewReport builds the report of a result.
func NewReport(r *Result) Report {
	s := r.Summary
	rep := Report{
		File:     r.FileName,
		Roots:    s.Roots,
		Visited:  s.Visited,
		Records:  s.Records,
		Unstyled: s.Unstyled,
		Rows:     s.Rows,
		Themes:   append([]string{}, r.Table.Themes...),
		Empty:    s.Rows == 0,
	}
	for _, sk := range s.Skipped {
		rep.Skipped = append(rep.Skipped, ReportSkip{NodeID: sk.NodeID, Path: sk.Path, Reason: sk.Reason})
	}
	for _, c := range s.Conflicts {
		rep.Conflicts = append(rep.Conflicts, ReportConflict{
			Key: c.KeyID, Theme: c.Theme, Previous: c.Previous, Value: c.Value, NodeID: c.NodeID,
		})
	}
	return rep
}

// WriteReport writes the YAML report of a result to w.
func WriteReport(w io.Writer, r *Result) error {
	data, err := yaml.Marshal(NewReport(r))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
