package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"farmwatch/internal/models"
)

// Template is the presentation attached to a priority level.
type Template struct {
	SubjectPrefix string
	Color         template.CSS
	PriorityText  string
	Actions       []string
}

var templates = map[models.Priority]Template{
	models.PriorityCritical: {
		SubjectPrefix: "🚨 CRITICAL ALERT",
		Color:         "#FF0000",
		PriorityText:  "IMMEDIATE ACTION REQUIRED",
		Actions: []string{
			"🚨 Immediate action required - check farm perimeter immediately",
			"📞 Contact security/farm personnel",
			"🚪 Secure livestock and crops",
			"🔍 Monitor the area continuously",
		},
	},
	models.PriorityHigh: {
		SubjectPrefix: "⚠️ HIGH PRIORITY",
		Color:         "#FF6600",
		PriorityText:  "HIGH PRIORITY DETECTION",
		Actions: []string{
			"⚠️ High priority - investigate within 30 minutes",
			"🔍 Check affected farm areas",
			"🛡️ Implement deterrent measures if needed",
			"📝 Document the incident",
		},
	},
	models.PriorityMedium: {
		SubjectPrefix: "⚡ MEDIUM ALERT",
		Color:         "#FFCC00",
		PriorityText:  "MEDIUM PRIORITY DETECTION",
		Actions: []string{
			"📋 Review detection details",
			"🔍 Monitor the area for further activity",
			"📊 Update farm monitoring logs",
			"🛠️ Consider preventive measures",
		},
	},
	models.PriorityLow: {
		SubjectPrefix: "📢 NOTIFICATION",
		Color:         "#00CC00",
		PriorityText:  "ROUTINE DETECTION",
		Actions: []string{
			"📝 Note the detection for records",
			"📊 Update monitoring statistics",
			"🔍 Routine area check recommended",
		},
	},
}

var speciesEmoji = map[string]string{
	"elephant":  "🐘",
	"cow":       "🐄",
	"buffalo":   "🐃",
	"goat":      "🐐",
	"sheep":     "🐑",
	"pig":       "🐷",
	"dog":       "🐕",
	"cat":       "🐱",
	"monkey":    "🐒",
	"deer":      "🦌",
	"wild_boar": "🐗",
	"nilgai":    "🦌",
	"peacock":   "🦚",
	"bird":      "🐦",
	"bear":      "🐻",
	"horse":     "🐎",
	"zebra":     "🦓",
	"giraffe":   "🦒",
}

// TemplateFor returns the template of p; unknown levels use MEDIUM.
func TemplateFor(p models.Priority) Template {
	if t, ok := templates[p]; ok {
		return t
	}
	return templates[models.PriorityMedium]
}

var alertBody = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Animal Detection Alert</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
<div style="background: {{.Color}}; color: white; padding: 20px; border-radius: 10px 10px 0 0; text-align: center;">
<h1 style="margin: 0; font-size: 24px;">🚜 Farm Animal Detection Alert</h1>
<p style="margin: 10px 0 0 0; font-size: 16px;">{{.PriorityText}}</p>
</div>
<div style="background: #f9f9f9; padding: 20px; border: 1px solid #ddd;">
<div style="background: white; padding: 15px; border-radius: 5px; margin-bottom: 20px; border-left: 4px solid {{.Color}};">
<h2 style="margin: 0 0 10px 0; color: {{.Color}}; font-size: 18px;">Detection Summary</h2>
<p style="margin: 5px 0;"><strong>Detection Type:</strong> {{.DetectionType}}</p>
<p style="margin: 5px 0;"><strong>Time:</strong> {{.Time}}</p>
<p style="margin: 5px 0;"><strong>Animals Detected:</strong> {{len .Animals}}</p>
<p style="margin: 5px 0;"><strong>Priority Level:</strong> <span style="color: {{.Color}}; font-weight: bold;">{{.Priority}}</span></p>
</div>
<div style="background: white; padding: 15px; border-radius: 5px; margin-bottom: 20px;">
<h3 style="margin: 0 0 15px 0; font-size: 16px;">🐾 Detected Animals:</h3>
<ul style="margin: 0; padding-left: 20px;">
{{- range .Animals}}
<li style="margin: 5px 0; font-size: 16px;">{{.Emoji}} <strong>{{.Name}}</strong></li>
{{- end}}
</ul>
</div>
<div style="background: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 5px; margin-bottom: 20px;">
<h3 style="margin: 0 0 10px 0; color: #856404; font-size: 16px;">⚡ Recommended Actions:</h3>
<ul style="margin: 0; padding-left: 20px; color: #856404;">
{{- range .Actions}}
<li>{{.}}</li>
{{- end}}
</ul>
</div>
{{- if .HasSnapshot}}
<div style="background: white; padding: 15px; border-radius: 5px; margin-bottom: 20px; text-align: center;">
<h3 style="margin: 0 0 15px 0; font-size: 16px;">📸 Detection Frame:</h3>
<p style="margin: 0; color: #666; font-style: italic;">Detection frame is attached to this email</p>
</div>
{{- end}}
</div>
<div style="background: #333; color: white; padding: 15px; border-radius: 0 0 10px 10px; text-align: center; font-size: 14px;">
<p style="margin: 0;">Automated Farm Animal Detection System</p>
<p style="margin: 10px 0 0 0; font-size: 12px;">This is an automated alert. Please do not reply to this email.</p>
</div>
</body>
</html>
`))

type animalItem struct {
	Emoji string
	Name  string
}

type bodyData struct {
	Template
	Priority      models.Priority
	DetectionType string
	Time          string
	Animals       []animalItem
	HasSnapshot   bool
}

// Rendered is a ready-to-send alert.
type Rendered struct {
	Subject string
	HTML    string
}

// Render builds the subject and HTML body of an alert.
func Render(p models.Priority, species []string, at time.Time, live, hasSnapshot bool) (Rendered, error) {
	tpl := TemplateFor(p)

	data := bodyData{
		Template:      tpl,
		Priority:      p,
		DetectionType: "Video Processing",
		Time:          at.Format("2006-01-02 15:04:05"),
		HasSnapshot:   hasSnapshot,
	}
	if live {
		data.DetectionType = "Live Stream"
	}
	for _, s := range species {
		emoji, ok := speciesEmoji[s]
		if !ok {
			emoji = "🐾"
		}
		data.Animals = append(data.Animals, animalItem{Emoji: emoji, Name: displayName(s)})
	}

	var buf bytes.Buffer
	if err := alertBody.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("render alert body: %w", err)
	}
	return Rendered{
		Subject: fmt.Sprintf("%s: %s detected on farm", tpl.SubjectPrefix, strings.Join(species, ", ")),
		HTML:    buf.String(),
	}, nil
}

// displayName turns "wild_boar" into "Wild Boar".
func displayName(species string) string {
	words := strings.Fields(strings.ReplaceAll(species, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
