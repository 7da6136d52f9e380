package entity

// Metadata keys with a defined meaning. Everything else in a task's
// metadata map is an opaque extension.
const (
	MetadataKeyProposal   = "llmProposal"
	MetadataKeyWorkflowID = "workflowId"
	MetadataKeyNodeLabel  = "nodeLabel"
)

// LLMProposal is the AI-generated suggestion attached to a decision task.
// How the proposal was produced is outside this system; it is treated as
// opaque input to the HITL arbitration. Unknown fields are preserved in
// Extra so forward-compatible producers do not lose data.
type LLMProposal struct {
	SuggestedNextState string         `json:"suggestedNextState,omitempty"`
	SuggestedAction    string         `json:"suggestedAction,omitempty"`
	Confidence         float64        `json:"confidence,omitempty"`
	Reason             string         `json:"reason,omitempty"`
	Extra              map[string]any `json:"-"`
}

// ProposalFromMap decodes a proposal from its metadata map form.
func ProposalFromMap(raw map[string]any) *LLMProposal {
	p := &LLMProposal{}
	for k, v := range raw {
		switch k {
		case "suggestedNextState":
			p.SuggestedNextState, _ = v.(string)
		case "suggestedAction":
			p.SuggestedAction, _ = v.(string)
		case "confidence":
			p.Confidence = toFloat(v)
		case "reason":
			p.Reason, _ = v.(string)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[k] = v
		}
	}
	return p
}

// ToMap encodes the proposal back into its metadata map form.
func (p *LLMProposal) ToMap() map[string]any {
	m := make(map[string]any, 4+len(p.Extra))
	for k, v := range p.Extra {
		m[k] = v
	}
	if p.SuggestedNextState != "" {
		m["suggestedNextState"] = p.SuggestedNextState
	}
	if p.SuggestedAction != "" {
		m["suggestedAction"] = p.SuggestedAction
	}
	if p.Confidence != 0 {
		m["confidence"] = p.Confidence
	}
	if p.Reason != "" {
		m["reason"] = p.Reason
	}
	return m
}

// toFloat handles the numeric types JSON decoding may produce.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
