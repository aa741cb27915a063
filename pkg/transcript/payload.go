package transcript

import (
	"github.com/mitchellh/mapstructure"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// writeSlot decodes the opaque event payload into the typed stage slot.
// Payload shapes mirror the wire format: stage 1 and 2 carry lists of
// objects, stage 3 carries a single object (or a bare string answer).
func writeSlot(msg *domain.Message, slot domain.StageSlot, data any) error {
	if data == nil {
		switch slot {
		case domain.SlotResponses:
			msg.Responses = nil
		case domain.SlotRankings:
			msg.Rankings = nil
		case domain.SlotSynthesis:
			msg.Synthesis = nil
		}
		return nil
	}
	switch slot {
	case domain.SlotResponses:
		var out []domain.WorkerResponse
		if err := decodePayload(data, &out); err != nil {
			return domain.Protocolf("stage payload does not decode as worker responses: %v", err)
		}
		msg.Responses = out

	case domain.SlotRankings:
		var out []domain.EvaluatorRanking
		if err := decodePayload(data, &out); err != nil {
			return domain.Protocolf("stage payload does not decode as evaluator rankings: %v", err)
		}
		msg.Rankings = out

	case domain.SlotSynthesis:
		if s, ok := data.(string); ok {
			msg.Synthesis = &domain.SynthesizedResponse{Content: s}
			return nil
		}
		var out domain.SynthesizedResponse
		if err := decodePayload(data, &out); err != nil {
			return domain.Protocolf("stage payload does not decode as a synthesized response: %v", err)
		}
		msg.Synthesis = &out
	}
	return nil
}

// decodeTitle accepts either a bare string or {"title": "..."}.
func decodeTitle(data any) (string, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case map[string]any:
		if t, ok := v["title"].(string); ok {
			return t, nil
		}
	}
	return "", domain.Protocolf("title payload has no usable title")
}

// mergeMetadata shallow-merges event metadata into the message record.
// Known keys overwrite their typed fields; everything else lands in
// Custom. New event metadata takes precedence on key collision.
func mergeMetadata(existing *domain.MessageMetadata, incoming map[string]any) *domain.MessageMetadata {
	out := existing.Clone()
	if out == nil {
		out = &domain.MessageMetadata{}
	}
	for key, value := range incoming {
		switch key {
		case "labelMap":
			var lm map[string]string
			if err := decodePayload(value, &lm); err == nil {
				out.LabelMap = lm
				continue
			}
		case "aggregateRankings":
			var ar []domain.AggregateRanking
			if err := decodePayload(value, &ar); err == nil {
				out.AggregateRankings = ar
				continue
			}
		}
		if out.Custom == nil {
			out.Custom = make(map[string]any)
		}
		out.Custom[key] = value
	}
	return out
}

// mergeFinalSnapshot folds the workflow_complete payload into the
// metadata record. Object payloads merge key-by-key like metadata;
// anything else is stored whole under "result".
func mergeFinalSnapshot(existing *domain.MessageMetadata, data any) *domain.MessageMetadata {
	if m, ok := data.(map[string]any); ok {
		return mergeMetadata(existing, m)
	}
	return mergeMetadata(existing, map[string]any{"result": data})
}

func decodePayload(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
