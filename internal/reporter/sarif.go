package reporter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/reqlint/reqlint/internal/lint"
	"github.com/reqlint/reqlint/internal/models"
)

// SARIFReporter outputs findings in SARIF format for GitHub Code Scanning
type SARIFReporter struct{}

// SARIF structures
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShortDescription sarifText       `json:"shortDescription"`
	DefaultConfig    sarifRuleConfig `json:"defaultConfiguration"`
	Properties       sarifProperties `json:"properties"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifProperties struct {
	Tags []string `json:"tags"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifText         `json:"message"`
	Locations           []sarifLocation   `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// Report generates SARIF output for the given lint report
func (r *SARIFReporter) Report(report *models.Report) ([]byte, error) {
	rules, ruleIndexMap := r.buildRules(report.Findings)

	out := sarifReport{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "reqlint",
					Version:        "1.0.0",
					InformationURI: "https://github.com/reqlint/reqlint",
					Rules:          rules,
				},
			},
			Results: r.buildResults(report.Findings, ruleIndexMap),
		}},
	}

	return json.MarshalIndent(out, "", "  ")
}

func (r *SARIFReporter) buildRules(findings models.Findings) ([]sarifRule, map[string]int) {
	seen := make(map[string]models.Severity)
	for _, f := range findings {
		if _, ok := seen[f.Rule]; !ok {
			seen[f.Rule] = f.Severity
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]sarifRule, 0, len(ids))
	ruleIndexMap := make(map[string]int, len(ids))
	for _, id := range ids {
		level := "warning"
		if seen[id] == models.SeverityError {
			level = "error"
		}

		ruleIndexMap[id] = len(rules)
		rules = append(rules, sarifRule{
			ID:               id,
			Name:             id,
			ShortDescription: sarifText{Text: lint.Descriptions[id]},
			DefaultConfig:    sarifRuleConfig{Level: level},
			Properties: sarifProperties{
				Tags: []string{"dependencies", "manifest"},
			},
		})
	}

	return rules, ruleIndexMap
}

func (r *SARIFReporter) buildResults(findings models.Findings, ruleIndexMap map[string]int) []sarifResult {
	results := make([]sarifResult, 0, len(findings))

	for _, f := range findings {
		level := "warning"
		if f.Severity == models.SeverityError {
			level = "error"
		}

		location := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifact{
					URI: f.Requirement.SourceFile,
				},
			},
		}
		if f.Requirement.Line > 0 {
			location.PhysicalLocation.Region = sarifRegion{
				StartLine: f.Requirement.Line,
			}
		}

		results = append(results, sarifResult{
			RuleID:    f.Rule,
			RuleIndex: ruleIndexMap[f.Rule],
			Level:     level,
			Message:   sarifText{Text: f.Message},
			Locations: []sarifLocation{location},
			PartialFingerprints: map[string]string{
				"primaryLocationLineHash": fmt.Sprintf("%s:%s:%s",
					f.Requirement.Name, f.Requirement.SpecString(), f.Rule),
			},
		})
	}

	return results
}
