package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"go.yaml.in/yaml/v3"

	"github.com/spigell/attrition/internal/attrition"
)

// readRecord parses a JSON or YAML mapping of feature name to value. "-" reads stdin.
func readRecord(path string, stdin io.Reader) (attrition.Record, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	// YAML is a superset of JSON, so one decoder covers both formats.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing input %q: %w", path, err)
	}

	record, err := attrition.NormalizeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing input %q: %w", path, err)
	}
	return record, nil
}

// applyAssignments sets Key=Value pairs on the record. Values that parse as
// numbers are stored as numbers, everything else as a category string.
func applyAssignments(record attrition.Record, assignments []string) error {
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid assignment %q, expected Key=Value", a)
		}
		record[key] = parseValue(value)
	}
	return nil
}

func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// missingFeatures returns the required names absent from the record, in order.
func missingFeatures(record attrition.Record, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := record[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

type prompter interface {
	Choose(label string, items []string) (string, error)
	Ask(label string, validate func(string) error) (string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Choose(label string, items []string) (string, error) {
	sel := promptui.Select{Label: label, Items: items}
	_, value, err := sel.Run()
	return value, err
}

func (terminalPrompter) Ask(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{Label: label, Validate: validate}
	return p.Run()
}

// promptMissing asks for every required feature the record lacks. Features
// with a known vocabulary are offered as a choice, the rest must be numbers.
func promptMissing(p prompter, record attrition.Record, required []string, vocab map[string][]string) error {
	for _, name := range missingFeatures(record, required) {
		if items, ok := vocab[name]; ok && len(items) > 0 {
			value, err := p.Choose(name, items)
			if err != nil {
				return fmt.Errorf("prompt %s: %w", name, err)
			}
			record[name] = value
			continue
		}

		value, err := p.Ask(name, validateNumber)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", name, err)
		}
		record[name] = parseValue(value)
	}
	return nil
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}
