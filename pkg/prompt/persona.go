package prompt

import (
	"fmt"
	"os"
	"sort"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Persona describes the person the twin speaks for
type Persona struct {
	Name              string             `yaml:"name"`
	FullName          string             `yaml:"full_name"`
	Summary           string             `yaml:"summary"`
	Style             string             `yaml:"style"`
	LinkedIn          string             `yaml:"linkedin,omitempty"`
	Facts             map[string]any     `yaml:"facts,omitempty"`
	TechStack         map[string][]Skill `yaml:"tech_stack,omitempty"`
	ProficiencyLevels map[int]string     `yaml:"proficiency_levels,omitempty"`
	Rules             []string           `yaml:"rules,omitempty"`
}

// Skill is one entry of the tech stack, with proficiency from 1 to 5
type Skill struct {
	Name        string `yaml:"name"`
	Proficiency int    `yaml:"proficiency,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	maxPersonaSize     = 1024 * 1024
	defaultProficiency = 3
	defaultLevel       = "experience with"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ParsePersona decodes a persona from YAML
func ParsePersona(data []byte) (*Persona, error) {
	var persona Persona
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return nil, twin.ErrBadParameter.Withf("persona: %v", err)
	}
	if persona.Name == "" {
		return nil, twin.ErrBadParameter.With("persona: name is required")
	}
	if persona.FullName == "" {
		persona.FullName = persona.Name
	}
	return &persona, nil
}

// LoadPersona reads a persona from a YAML file
func LoadPersona(path string) (*Persona, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, twin.ErrNotFound.Withf("persona: %v", err)
	}
	if info.Size() > maxPersonaSize {
		return nil, twin.ErrBadParameter.Withf("persona: %q exceeds %d bytes", path, maxPersonaSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, twin.ErrInternalServerError.Withf("persona: %v", err)
	}
	return ParsePersona(data)
}

// DefaultPersona returns the built-in persona
func DefaultPersona() *Persona {
	persona, err := ParsePersona(defaultPersona)
	if err != nil {
		panic(err)
	}
	return persona
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Skills returns the tech stack by category, with each proficiency
// written out in words, e.g. "Go (expert in)"
func (p Persona) Skills() map[string][]string {
	result := make(map[string][]string, len(p.TechStack))
	for category, skills := range p.TechStack {
		for _, skill := range skills {
			proficiency := skill.Proficiency
			if proficiency == 0 {
				proficiency = defaultProficiency
			}
			level, exists := p.ProficiencyLevels[proficiency]
			if !exists {
				level = defaultLevel
			}
			result[category] = append(result[category], fmt.Sprintf("%s (%s)", skill.Name, level))
		}
	}
	return result
}

// Categories returns the tech stack categories in order
func (p Persona) Categories() []string {
	result := make([]string, 0, len(p.TechStack))
	for category := range p.TechStack {
		result = append(result, category)
	}
	sort.Strings(result)
	return result
}
