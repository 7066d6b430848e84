package chictx

import (
	"encoding/json"
	"fmt"

	"chigraph/irsink"
	"chigraph/langmodule"
	"chigraph/nodetype"
)

// decodeLangNodeType builds one of the lang module's fixed node kinds from
// its local name and serialized payload (spec 4.5 nodeTypeFromModule, lang
// side). entry/exit are intentionally excluded: their signature is derived
// from the owning function, not from a standalone payload, so they are only
// ever produced via graph.Function.CreateEntryNodeType/CreateExitNodeType.
func decodeLangNodeType(sink irsink.Sink, typeName string, payload []byte) (nodetype.NodeType, error) {
	switch typeName {
	case "if":
		return langmodule.NewIfNodeType(sink), nil

	case "const_i32", "const_i1", "const_i8", "const_double":
		var body struct {
			Value int64 `json:"value"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &body); err != nil {
				return nil, err
			}
		}
		primName := typeName[len("const_"):]
		return langmodule.NewConstNodeType(sink, primName, body.Value), nil

	case "strliteral":
		var body struct {
			Value string `json:"value"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &body); err != nil {
				return nil, err
			}
		}
		return langmodule.NewStrLiteralNodeType(sink, body.Value), nil

	default:
		return nil, fmt.Errorf("lang module has no node type %q", typeName)
	}
}
