package seed

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/epidemic/internal/card"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

type Validator struct {
	SeedPath string
	Results  ValidationResults
}

func NewValidator(seedPath string) *Validator {
	return &Validator{
		SeedPath: seedPath,
		Results:  ValidationResults{},
	}
}

// Validate checks a seed file. An error is returned only when the file cannot
// be read or parsed; problems with its contents go into the results.
func (v *Validator) Validate() (ValidationResults, error) {
	if _, err := os.Stat(v.SeedPath); os.IsNotExist(err) {
		return v.Results, fmt.Errorf("seed file not found: %s", v.SeedPath)
	}

	var f File
	md, err := toml.DecodeFile(v.SeedPath, &f)
	if err != nil {
		return v.Results, fmt.Errorf("error parsing seed file: %w", err)
	}

	v.validateHeader(f)
	v.validateCards(f.Cards)
	v.validateUndecoded(md)

	return v.Results, nil
}

func (v *Validator) validateHeader(f File) {
	if f.Name == "" {
		v.Results.Errors = append(v.Results.Errors, "name is required")
	}
	if f.Description == "" {
		v.Results.Warnings = append(v.Results.Warnings, "no description")
	}
}

// validateCards checks every [[cards]] entry
func (v *Validator) validateCards(cards []CardEntry) {
	if len(cards) == 0 {
		v.Results.Errors = append(v.Results.Errors, "no [[cards]] entries found")
		return
	}

	seen := make(map[string]int)
	perColor := make(map[card.Color]int)
	for i, entry := range cards {
		if strings.TrimSpace(entry.Name) == "" {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("card %d has no name", i+1))
			continue
		}

		color, err := card.ParseColor(entry.Color)
		if err != nil {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("card %s: %v", entry.Name, err))
		} else {
			perColor[color]++
		}

		if first, ok := seen[entry.Name]; ok {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("card %s is listed twice (entries %d and %d), only the first is used", entry.Name, first, i+1))
			continue
		}
		seen[entry.Name] = i + 1
	}

	if perColor[card.Gray] > 0 {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%d cards use gray, which is also the excluded pile color", perColor[card.Gray]))
	}
}

func (v *Validator) validateUndecoded(md toml.MetaData) {
	for _, key := range md.Undecoded() {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("unknown key: %s", key.String()))
	}
}
