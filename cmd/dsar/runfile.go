package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
)

// runFile describes one offline discovery run:
//
//	case:
//	  reference: DSAR-2026-014
//	  subject:
//	    name: Jane Doe
//	    email: jane.doe@example.com
//	    emailVerified: true
//	    identifiers: {employeeId: E-1001}
//	mode: CONTENT_SCAN
//	fixtures: ./fixtures
//	sources:
//	  - {id: hr, name: HR system, provider: fixture, enabled: true, settings: {dir: hr}}
type runFile struct {
	Case      caseSpec              `yaml:"case"`
	Mode      string                `yaml:"mode"`
	Fixtures  string                `yaml:"fixtures"`
	EnableOCR bool                  `yaml:"enableOCR"`
	EnableLLM bool                  `yaml:"enableLLM"`
	Sources   []models.SourceConfig `yaml:"sources"`
}

type caseSpec struct {
	Reference string      `yaml:"reference"`
	From      *time.Time  `yaml:"from"`
	To        *time.Time  `yaml:"to"`
	Subject   subjectSpec `yaml:"subject"`
}

type subjectSpec struct {
	Name          string            `yaml:"name"`
	Email         string            `yaml:"email"`
	EmailVerified bool              `yaml:"emailVerified"`
	Phone         string            `yaml:"phone"`
	Address       string            `yaml:"address"`
	Identifiers   map[string]string `yaml:"identifiers"`
}

// loadRunFile reads and validates a run file. A relative fixtures directory
// is resolved against the run file's directory.
func loadRunFile(path string) (*runFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rf, err := parseRunFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rf.Fixtures != "" && !filepath.IsAbs(rf.Fixtures) {
		rf.Fixtures = filepath.Join(filepath.Dir(path), rf.Fixtures)
	}
	return rf, nil
}

func parseRunFile(data []byte) (*runFile, error) {
	var rf runFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse run file: %w", err)
	}
	if rf.Mode == "" {
		rf.Mode = string(detection.ModeContentScan)
	}
	if _, err := detection.ParseContentMode(rf.Mode); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rf.Case.Subject.Name) == "" && strings.TrimSpace(rf.Case.Subject.Email) == "" {
		return nil, errors.New("case subject needs a name or an email")
	}
	if rf.Case.From != nil && rf.Case.To != nil && rf.Case.To.Before(*rf.Case.From) {
		return nil, errors.New("case window ends before it starts")
	}
	if len(rf.Sources) == 0 {
		return nil, errors.New("at least one source is required")
	}
	seen := make(map[id.SourceID]bool, len(rf.Sources))
	for i, src := range rf.Sources {
		sid, err := id.ParseSourceID(string(src.ID))
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if seen[sid] {
			return nil, fmt.Errorf("duplicate source id %q", sid)
		}
		seen[sid] = true
		if src.Provider == "" {
			return nil, fmt.Errorf("source %q: provider is required", sid)
		}
		rf.Sources[i].ID = sid
		if rf.Sources[i].Name == "" {
			rf.Sources[i].Name = string(sid)
		}
	}
	return &rf, nil
}

// contentMode is valid once parseRunFile has succeeded.
func (rf *runFile) contentMode() detection.ContentMode {
	m, _ := detection.ParseContentMode(rf.Mode)
	return m
}

func (rf *runFile) caseRecord(caseID id.CaseID) models.Case {
	return models.Case{
		ID:        caseID,
		Reference: rf.Case.Reference,
		Purpose:   id.PurposeDSAR,
		From:      rf.Case.From,
		To:        rf.Case.To,
	}
}

func (rf *runFile) subject() *identity.CaseSubject {
	s := rf.Case.Subject
	return &identity.CaseSubject{
		Name:          s.Name,
		Email:         s.Email,
		EmailVerified: s.EmailVerified,
		Phone:         s.Phone,
		Address:       s.Address,
		Identifiers:   s.Identifiers,
	}
}
