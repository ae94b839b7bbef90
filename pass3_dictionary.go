package jsonschemallm

import "strings"

// Dictionary transpilation constants, grounded on
// original_source's p3_dictionary.rs.
const (
	dictKeyField           = "key"
	dictValueField         = "value"
	dictAdditionalProperty = "_additional"
)

// dictionaryPass is P3: transpiles additionalProperties:Schema maps into
// arrays of {key,value} pairs, per spec §4.5.
type dictionaryPass struct {
	opts  ConvertOptions
	codec *Codec
}

func newDictionaryPass(opts ConvertOptions, codec *Codec) *dictionaryPass {
	return &dictionaryPass{opts: opts, codec: codec}
}

func (p *dictionaryPass) run(schema any) (any, error) {
	if p.opts.Target == TargetGemini {
		return schema, nil
	}
	return p.processAt(schema, "#", 0)
}

func (p *dictionaryPass) processAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}
	if _, ok := node.(bool); ok {
		return node, nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}

	types := asTypeSlice(obj["type"])
	isObjectTyped := containsString(types, "object")
	apSchema, apIsSchema := obj["additionalProperties"].(map[string]any)
	props, _ := obj["properties"].(map[string]any)

	if isObjectTyped && apIsSchema {
		if len(props) == 0 {
			return p.transpilePureMap(obj, apSchema, path, depth)
		}
		return p.extractAdditionalProperties(obj, apSchema, props, path, depth)
	}

	return recurseIntoChildren(obj, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

func (p *dictionaryPass) transpilePureMap(node, valueSchema map[string]any, path string, depth int) (any, error) {
	recursedValue, err := p.processAt(valueSchema, path+"/additionalProperties", depth+1)
	if err != nil {
		return nil, err
	}
	entry := map[string]any{
		"type": "object",
		"properties": map[string]any{
			dictKeyField:   map[string]any{"type": "string"},
			dictValueField: recursedValue,
		},
		"required":             []any{dictKeyField, dictValueField},
		"additionalProperties": false,
	}
	out := map[string]any{
		"type":  "array",
		"items": entry,
	}
	if desc, ok := node["description"]; ok {
		out["description"] = desc
	}
	if title, ok := node["title"]; ok {
		out["title"] = title
	}
	p.codec.addTransform(MapToArray{Path: path, KeyField: dictKeyField})
	return out, nil
}

func (p *dictionaryPass) extractAdditionalProperties(node, apSchema, props map[string]any, path string, depth int) (any, error) {
	name := dictAdditionalProperty
	for {
		if _, collides := props[name]; !collides {
			break
		}
		name += "_extra"
	}

	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}

	newProps := make(map[string]any, len(props)+1)
	for k, v := range props {
		newProps[k] = v
	}

	syntheticPath := path + "/properties/" + name
	mapEntry, err := p.transpilePureMap(map[string]any{}, apSchema, syntheticPath, depth+1)
	if err != nil {
		return nil, err
	}
	newProps[name] = mapEntry
	out["properties"] = newProps
	out["additionalProperties"] = false

	p.codec.addTransform(ExtractAdditionalProperties{Path: path, PropertyName: name})

	return recurseIntoChildren(out, path, func(child any, childPath string) (any, error) {
		if childPath == syntheticPath {
			// Already processed above (and its own MapToArray transform
			// already emitted by transpilePureMap), skip re-processing.
			return child, nil
		}
		return p.processAt(child, childPath, depth+1)
	})
}

func containsString(arr []any, s string) bool {
	for _, v := range arr {
		if str, ok := v.(string); ok && strings.EqualFold(str, s) {
			return true
		}
	}
	return false
}
