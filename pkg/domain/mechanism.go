package domain

// Mechanism identifies how a step collects the visitor's answer.
// The set is closed; it is not user-extensible.
type Mechanism string

const (
	MechanismOpenEnded      Mechanism = "open-ended"
	MechanismMultipleChoice Mechanism = "multiple-choice"
	MechanismButton         Mechanism = "button"
	MechanismCalendar       Mechanism = "calendar"
	MechanismFileUpload     Mechanism = "file-upload"
	MechanismNPS            Mechanism = "nps"
	MechanismContactForm    Mechanism = "contact-form"
)

// MechanismInfo is the presentation metadata for a mechanism.
type MechanismInfo struct {
	Icon        string `json:"icon"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// mechanismCatalog holds the fixed presentation entries, in display order.
var mechanismCatalog = []struct {
	Mechanism Mechanism
	Info      MechanismInfo
}{
	{MechanismOpenEnded, MechanismInfo{Icon: "mic", Label: "Open ended", Description: "Visitor replies with video, audio or text"}},
	{MechanismMultipleChoice, MechanismInfo{Icon: "list", Label: "Multiple choice", Description: "Visitor picks one of the configured options"}},
	{MechanismButton, MechanismInfo{Icon: "hand-pointer", Label: "Buttons", Description: "Visitor clicks one of the configured buttons"}},
	{MechanismCalendar, MechanismInfo{Icon: "calendar", Label: "Calendar", Description: "Visitor books a date"}},
	{MechanismFileUpload, MechanismInfo{Icon: "paperclip", Label: "File upload", Description: "Visitor attaches a file"}},
	{MechanismNPS, MechanismInfo{Icon: "gauge", Label: "NPS", Description: "Visitor scores 0-10"}},
	{MechanismContactForm, MechanismInfo{Icon: "id-card", Label: "Contact form", Description: "Visitor fills in contact details"}},
}

// Mechanisms returns the closed list of answer mechanisms in display order.
func Mechanisms() []Mechanism {
	out := make([]Mechanism, 0, len(mechanismCatalog))
	for _, e := range mechanismCatalog {
		out = append(out, e.Mechanism)
	}
	return out
}

// Info returns the presentation metadata for the mechanism.
// Unknown mechanisms report an empty entry.
func (m Mechanism) Info() MechanismInfo {
	for _, e := range mechanismCatalog {
		if e.Mechanism == m {
			return e.Info
		}
	}
	return MechanismInfo{}
}

// Valid reports whether m is one of the known mechanisms.
func (m Mechanism) Valid() bool {
	for _, e := range mechanismCatalog {
		if e.Mechanism == m {
			return true
		}
	}
	return false
}

// ButtonSpec configures a single button of a button step.
type ButtonSpec struct {
	Text string `json:"text" mapstructure:"text"`
}

// FormField configures a single field of a contact-form step.
type FormField struct {
	ID        string `json:"id" mapstructure:"id"`
	Label     string `json:"label" mapstructure:"label"`
	FieldType string `json:"fieldType" mapstructure:"field_type"`
	Required  bool   `json:"required" mapstructure:"required"`
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
}

// MechanismConfig carries the mechanism-specific configuration of a step.
// Only the fields relevant to the step's mechanism are populated; the
// others stay at their zero value and are omitted on the wire.
type MechanismConfig struct {
	// Open-ended: enabled response channels plus a recording time limit.
	Video            bool `json:"video,omitempty" mapstructure:"video"`
	Audio            bool `json:"audio,omitempty" mapstructure:"audio"`
	Text             bool `json:"text,omitempty" mapstructure:"text"`
	TimeLimitSeconds int  `json:"timeLimitSeconds,omitempty" mapstructure:"time_limit_seconds"`

	// Multiple choice: ordered option labels.
	Options []string `json:"options,omitempty" mapstructure:"options"`

	// Button: ordered button specs.
	Buttons []ButtonSpec `json:"buttons,omitempty" mapstructure:"buttons"`

	// Contact form: ordered field specs.
	Fields []FormField `json:"fields,omitempty" mapstructure:"fields"`

	// DelaySeconds postpones revealing the answer mechanism after the
	// media starts playing.
	DelaySeconds int `json:"delaySeconds,omitempty" mapstructure:"delay_seconds"`
}

// DefaultOpenEndedConfig is the configuration a freshly added step gets:
// all response channels enabled, no time limit.
func DefaultOpenEndedConfig() MechanismConfig {
	return MechanismConfig{Video: true, Audio: true, Text: true}
}

// Channels returns the enabled open-ended response channels in canonical
// order (video, audio, text).
func (c MechanismConfig) Channels() []string {
	var out []string
	if c.Video {
		out = append(out, ChannelVideo)
	}
	if c.Audio {
		out = append(out, ChannelAudio)
	}
	if c.Text {
		out = append(out, ChannelText)
	}
	return out
}
