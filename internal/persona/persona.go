// Package persona holds the fixed registry of agent personas and the
// keyword-based auto-detection that picks one for a prompt.
package persona

import (
	"fmt"
	"strings"

	"github.com/consoleagent/consoleagent/pkg/models"
)

// registry is the closed persona set, populated at init and never mutated.
var registry = map[models.PersonaName]models.PersonaDefinition{
	models.PersonaDebugger:  debuggerPersona,
	models.PersonaSecurity:  securityPersona,
	models.PersonaArchitect: architectPersona,
	models.PersonaGeneral:   generalPersona,
}

// detectionOrder is the fixed priority for keyword detection. Security
// outranks debugger so a prompt like "debug this security vulnerability"
// is never masked by a debugging keyword. General has no keywords and only
// wins as the default.
var detectionOrder = []models.PersonaName{
	models.PersonaSecurity,
	models.PersonaDebugger,
	models.PersonaArchitect,
}

// Get returns the persona definition for name.
func Get(name models.PersonaName) (models.PersonaDefinition, error) {
	def, ok := registry[name]
	if !ok {
		return models.PersonaDefinition{}, fmt.Errorf("unknown persona %q", name)
	}
	return def, nil
}

// Detect picks the best persona for a prompt by case-insensitive substring
// match against each persona's keywords, in priority order. If nothing
// matches, the persona named fallback wins.
func Detect(prompt string, fallback models.PersonaName) models.PersonaDefinition {
	lower := strings.ToLower(prompt)

	for _, name := range detectionOrder {
		def := registry[name]
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				return def
			}
		}
	}

	if def, ok := registry[fallback]; ok {
		return def
	}
	return registry[models.PersonaGeneral]
}

// All returns every registered persona, for diagnostics and the HTTP API.
func All() []models.PersonaDefinition {
	out := make([]models.PersonaDefinition, 0, len(registry))
	for _, name := range []models.PersonaName{
		models.PersonaDebugger,
		models.PersonaSecurity,
		models.PersonaArchitect,
		models.PersonaGeneral,
	} {
		out = append(out, registry[name])
	}
	return out
}
