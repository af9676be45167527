package http

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/kinoflow/kinoflow/pkg/builder"
	"github.com/kinoflow/kinoflow/pkg/domain"
)

// patchStepRequest is a sparse update: only the fields present in the
// request are applied, in the order declared here. Mechanism precedes
// the config setters so a combined mechanism+config patch derives rules
// once per setter against the new mechanism.
type patchStepRequest struct {
	Label           *string          `json:"label"`
	Position        *domain.Position `json:"position"`
	MediaRef        *string          `json:"mediaRef"`
	Mechanism       *string          `json:"answerMechanism"`
	MechanismConfig map[string]any   `json:"mechanismConfig"`
}

func applyStepPatch(ed *builder.Editor, stepID string, body patchStepRequest) error {
	if body.Label != nil {
		ed.RenameStep(stepID, *body.Label)
	}
	if body.Position != nil {
		ed.MoveStep(stepID, *body.Position)
	}
	if body.MediaRef != nil {
		ed.SetMediaRef(stepID, *body.MediaRef)
	}

	if body.Mechanism != nil {
		m := domain.Mechanism(*body.Mechanism)
		if !m.Valid() {
			return fmt.Errorf("unknown answer mechanism %q", *body.Mechanism)
		}
		cfg, err := decodeMechanismConfig(body.MechanismConfig)
		if err != nil {
			return err
		}
		ed.SetAnswerMechanism(stepID, m, cfg)
		return nil
	}

	if body.MechanismConfig != nil {
		cfg, err := decodeMechanismConfig(body.MechanismConfig)
		if err != nil {
			return err
		}
		n := ed.Store().NodeByID(stepID)
		if n == nil {
			return nil
		}
		switch n.Mechanism {
		case domain.MechanismMultipleChoice:
			ed.SetOptions(stepID, cfg.Options)
		case domain.MechanismButton:
			ed.SetButtons(stepID, cfg.Buttons)
		case domain.MechanismContactForm:
			ed.SetFormFields(stepID, cfg.Fields)
		case domain.MechanismOpenEnded:
			ed.SetResponseChannels(stepID, cfg.Video, cfg.Audio, cfg.Text)
		default:
			ed.SetAnswerMechanism(stepID, n.Mechanism, cfg)
		}
	}
	return nil
}

// decodeMechanismConfig accepts both the snake_case wire keys and loosely
// typed values from JS clients.
func decodeMechanismConfig(raw map[string]any) (domain.MechanismConfig, error) {
	var cfg domain.MechanismConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid mechanism config: %w", err)
	}
	return cfg, nil
}
