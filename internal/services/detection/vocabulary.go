package detection

import (
	"fmt"
	"sort"

	"farmwatch/internal/models"
)

// DefaultSpecies maps detector class ids to the farm species vocabulary.
// Ids 15-23 follow COCO; the rest come from the extended farm model.
var DefaultSpecies = map[int]string{
	15: "cat",
	16: "dog",
	17: "horse",
	18: "sheep",
	19: "cow",
	20: "elephant",
	21: "bear",
	22: "zebra",
	23: "giraffe",
	24: "buffalo",
	25: "goat",
	26: "pig",
	27: "monkey",
	28: "wild_boar",
	29: "nilgai",
	30: "deer",
	31: "peacock",
	32: "bird",
}

// DefaultPriorities is the species to alert priority table. Species that are
// missing here are LOW.
var DefaultPriorities = map[string]models.Priority{
	"elephant":  models.PriorityCritical,
	"wild_boar": models.PriorityHigh,
	"nilgai":    models.PriorityHigh,
	"bear":      models.PriorityHigh,
	"monkey":    models.PriorityMedium,
	"deer":      models.PriorityMedium,
	"stray_dog": models.PriorityMedium,
	"pig":       models.PriorityMedium,
	"cow":       models.PriorityLow,
	"buffalo":   models.PriorityLow,
	"goat":      models.PriorityLow,
	"sheep":     models.PriorityLow,
	"peacock":   models.PriorityLow,
	"bird":      models.PriorityLow,
	"cat":       models.PriorityLow,
	"dog":       models.PriorityLow,
}

// vocabulary is the mutable copy of the tables owned by a Service.
type vocabulary struct {
	species    map[int]string
	priorities map[string]models.Priority
}

func newVocabulary() vocabulary {
	v := vocabulary{
		species:    make(map[int]string, len(DefaultSpecies)),
		priorities: make(map[string]models.Priority, len(DefaultPriorities)),
	}
	for id, name := range DefaultSpecies {
		v.species[id] = name
	}
	for name, p := range DefaultPriorities {
		v.priorities[name] = p
	}
	return v
}

func (v vocabulary) priorityOf(species string) models.Priority {
	if p, ok := v.priorities[species]; ok {
		return p
	}
	return models.PriorityLow
}

// names returns the species ordered by class id.
func (v vocabulary) names() []string {
	ids := make([]int, 0, len(v.species))
	for id := range v.species {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.species[id])
	}
	return out
}

func validatePriorities(in map[string]models.Priority) error {
	for species, p := range in {
		if species == "" {
			return fmt.Errorf("empty species name")
		}
		if !p.Valid() {
			return fmt.Errorf("invalid priority %q for %s", p, species)
		}
	}
	return nil
}
