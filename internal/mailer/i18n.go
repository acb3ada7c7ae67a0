package mailer

import (
	"fmt"
	"strings"
)

// Minimal two-locale catalog. The notification message doubles as the email
// subject, so translateSubject falls back to the literal string when no
// translation exists.

var subjectTranslations = map[string]map[string]string{
	"es": {
		"You have been assigned to a candidate":  "Has sido asignado a un candidato",
		"You have been assigned a candidate":     "Se te ha asignado un candidato",
		"A candidate has been given feedback":    "Un candidato ha recibido feedback",
		"A candidate has a note":                 "Un candidato tiene una nota",
		"There is a candidate for your position": "Hay un candidato para tu posición",
		"A candidate has moved to a new stage":   "Un candidato ha pasado a una nueva etapa",
	},
}

// Subjects that embed the job title translate around it.
type dynamicSubject struct {
	prefix string
	suffix string
	format string
}

var dynamicSubjects = map[string][]dynamicSubject{
	"es": {
		{
			prefix: "A new job has been created: ",
			format: "Se ha creado una nueva posición: %s",
		},
		{
			prefix: "A new candidate has applied to the ",
			suffix: " position",
			format: "Un nuevo candidato ha aplicado a la posición %s",
		},
	},
}

func translateSubject(subject, locale string) string {
	if catalog, ok := subjectTranslations[locale]; ok {
		if translated, ok := catalog[subject]; ok {
			return translated
		}
	}
	for _, d := range dynamicSubjects[locale] {
		title, ok := strings.CutPrefix(subject, d.prefix)
		if !ok {
			continue
		}
		if d.suffix != "" {
			if title, ok = strings.CutSuffix(title, d.suffix); !ok {
				continue
			}
		}
		return fmt.Sprintf(d.format, title)
	}
	return subject
}

type templateText struct {
	greeting string
	body     string
	action   string
}

var templateTexts = map[string]map[string]templateText{
	"en": {
		"candidate": {
			greeting: "Hi",
			body:     "A candidate in your pipeline has activity that needs your attention.",
			action:   "View candidate",
		},
		"feedback": {
			greeting: "Hi",
			body:     "New interview feedback has been left for one of your candidates.",
			action:   "View feedback",
		},
		"note": {
			greeting: "Hi",
			body:     "You were mentioned in a note on a candidate.",
			action:   "View note",
		},
		"job": {
			greeting: "Hi",
			body:     "A new position has been opened.",
			action:   "View job",
		},
		"application": {
			greeting: "Hi",
			body:     "A new candidate has applied to one of your positions.",
			action:   "View application",
		},
	},
	"es": {
		"candidate": {
			greeting: "Hola",
			body:     "Un candidato de tu pipeline tiene actividad que requiere tu atención.",
			action:   "Ver candidato",
		},
		"feedback": {
			greeting: "Hola",
			body:     "Se ha dejado nuevo feedback de entrevista para uno de tus candidatos.",
			action:   "Ver feedback",
		},
		"note": {
			greeting: "Hola",
			body:     "Te han mencionado en una nota sobre un candidato.",
			action:   "Ver nota",
		},
		"job": {
			greeting: "Hola",
			body:     "Se ha abierto una nueva posición.",
			action:   "Ver posición",
		},
		"application": {
			greeting: "Hola",
			body:     "Un nuevo candidato ha aplicado a una de tus posiciones.",
			action:   "Ver aplicación",
		},
	},
}

func templateStrings(templateType, locale string) templateText {
	catalog, ok := templateTexts[locale]
	if !ok {
		catalog = templateTexts["en"]
	}
	if text, ok := catalog[templateType]; ok {
		return text
	}
	// Unknown type still produces a generic email rather than failing.
	return catalog["candidate"]
}
