// Command validate checks tavern content files before they ship:
// strict YAML decoding, structural validation, and a few lint rules
// the engine itself does not enforce.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tavernkeep/tavern-engine/pkg/tavern"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <tavern.yaml> [...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		v := &TavernValidator{}
		if err := v.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type TavernValidator struct {
	errors []string
}

var validFilename = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func (v *TavernValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("tavern file must have .yaml extension: %s", baseName)
	}
	if name := strings.TrimSuffix(baseName, ext); !validFilename.MatchString(name) {
		return fmt.Errorf("tavern filename %q must be lowercase snake_case (e.g. oak_and_ember.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	var tv tavern.Tavern
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&tv); err != nil {
		return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
	}

	if err := tv.Validate(); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.lint(&tv)

	if len(v.errors) > 0 {
		return fmt.Errorf("lint errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// lint flags content that is structurally legal but almost certainly
// a mistake.
func (v *TavernValidator) lint(tv *tavern.Tavern) {
	for id := range tv.Rooms {
		if !validFilename.MatchString(id) {
			v.errors = append(v.errors, fmt.Sprintf("  - room id %q should be lowercase snake_case", id))
		}
	}
	for id := range tv.Catalog {
		if !validFilename.MatchString(id) {
			v.errors = append(v.errors, fmt.Sprintf("  - item id %q should be lowercase snake_case", id))
		}
	}
	for _, n := range tv.NPCs {
		if !validFilename.MatchString(n.ID) {
			v.errors = append(v.errors, fmt.Sprintf("  - npc id %q should be lowercase snake_case", n.ID))
		}
		if len(n.Schedule) == 0 {
			v.errors = append(v.errors, fmt.Sprintf("  - npc %q has no schedule and will never appear", n.ID))
		}
		if n.Room == "" {
			v.errors = append(v.errors, fmt.Sprintf("  - npc %q has no room", n.ID))
		}
	}

	// Every room should be reachable from the opening room.
	reachable := map[string]bool{tv.OpeningRoom: true}
	frontier := []string{tv.OpeningRoom}
	for len(frontier) > 0 {
		room := frontier[0]
		frontier = frontier[1:]
		for _, exit := range tv.Rooms[room].Exits {
			if !reachable[exit] {
				reachable[exit] = true
				frontier = append(frontier, exit)
			}
		}
	}
	for id := range tv.Rooms {
		if !reachable[id] {
			v.errors = append(v.errors, fmt.Sprintf("  - room %q is unreachable from the opening room", id))
		}
	}
}
