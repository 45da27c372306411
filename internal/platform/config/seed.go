package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CostumeSeed is one costume row of the startup snapshot. The keys mirror the
// flat "costume.*" properties the demo has always been configured with.
type CostumeSeed struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	MinAge         int    `yaml:"minage"`
	MaxAge         int    `yaml:"maxage"`
	OwnerFirstName string `yaml:"ownerfirstname"`
	OwnerLastName  string `yaml:"ownerlastname"`
}

type seedFile struct {
	Costumes []CostumeSeed `yaml:"costumes"`
}

// ErrNoSeed is returned when neither a seed file nor COSTUME_ID is configured.
var ErrNoSeed = errors.New("no costume seed configured")

// LoadCostumeSeed returns the snapshot from the YAML file at path when set,
// otherwise from the COSTUME_* environment keys.
func LoadCostumeSeed(path string) ([]CostumeSeed, error) {
	if path != "" {
		return LoadSeedFile(path)
	}
	return SeedFromEnv()
}

// LoadSeedFile parses a YAML document of the form:
//
//	costumes:
//	  - id: C-100
//	    name: Vampire Cape
//	    type: classic
//	    minage: 5
//	    maxage: 99
//	    ownerfirstname: Jane
//	    ownerlastname: Doe
func LoadSeedFile(path string) ([]CostumeSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read costume seed: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse costume seed %s: %w", path, err)
	}
	if len(doc.Costumes) == 0 {
		return nil, ErrNoSeed
	}
	return doc.Costumes, nil
}

// SeedFromEnv reads the single-record snapshot from COSTUME_ID, COSTUME_NAME,
// COSTUME_TYPE, COSTUME_MINAGE, COSTUME_MAXAGE, COSTUME_OWNERFIRSTNAME and
// COSTUME_OWNERLASTNAME.
func SeedFromEnv() ([]CostumeSeed, error) {
	id := strings.TrimSpace(os.Getenv("COSTUME_ID"))
	if id == "" {
		return nil, ErrNoSeed
	}
	minAge, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COSTUME_MINAGE")))
	if err != nil {
		return nil, fmt.Errorf("COSTUME_MINAGE: %w", err)
	}
	maxAge, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COSTUME_MAXAGE")))
	if err != nil {
		return nil, fmt.Errorf("COSTUME_MAXAGE: %w", err)
	}
	return []CostumeSeed{{
		ID:             id,
		Name:           os.Getenv("COSTUME_NAME"),
		Type:           os.Getenv("COSTUME_TYPE"),
		MinAge:         minAge,
		MaxAge:         maxAge,
		OwnerFirstName: os.Getenv("COSTUME_OWNERFIRSTNAME"),
		OwnerLastName:  os.Getenv("COSTUME_OWNERLASTNAME"),
	}}, nil
}
