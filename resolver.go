package jsonschemallm

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dotslashderek/jsonschema-llm/internal/pointer"
)

// defaultBaseURI is used when the root schema carries no $id.
const defaultBaseURI = "file:///schema.json"

// resolvedRef is the outcome of resolving a $ref string: either a JSON
// Pointer fragment into the root document, or Unresolvable (external URL or
// unknown anchor — spec §1 Non-goals exclude network fetch).
type resolvedRef struct {
	pointerFragment string // e.g. "/$defs/Foo" (no leading "#")
	unresolvable    bool
}

// resolverEngine resolves $ref/$anchor/$id per spec §4.2. It is built once
// per Convert call by scanning the whole schema for $id-relative base
// scoping and $anchor declarations, the way the teacher's Normalizer
// resolves refs against Base/Root but generalized to a proper anchor map
// (original_source's anchor_utils.rs: build_anchor_map/scan_anchors).
type resolverEngine struct {
	root      map[string]any
	anchorMap map[string]string // "<absoluteBase>#<anchor>" -> JSON pointer fragment
}

func newResolverEngine(root map[string]any) *resolverEngine {
	r := &resolverEngine{root: root, anchorMap: map[string]string{}}
	r.scanAnchors(root, defaultBaseURI, "")
	return r
}

// scanAnchors walks schema depth-first, tracking the current base URI
// (updated whenever a node declares $id) and the current JSON Pointer. The
// first declaration of a given anchor key reached by the walk wins; keys of
// one object are visited in Go map order, so which of two same-level
// duplicates is reached first is not defined.
func (r *resolverEngine) scanAnchors(node any, currentBase, currentPointer string) {
	obj, ok := node.(map[string]any)
	if !ok {
		return
	}

	base := currentBase
	if id, ok := obj["$id"].(string); ok && strings.TrimSpace(id) != "" {
		if u, err := url.Parse(id); err == nil {
			if parsedBase, err := url.Parse(base); err == nil {
				base = parsedBase.ResolveReference(u).String()
			}
		}
		key := base
		if _, exists := r.anchorMap[key]; !exists {
			r.anchorMap[key] = currentPointer
		}
	}

	if anchor, ok := obj["$anchor"].(string); ok && strings.TrimSpace(anchor) != "" {
		key := base + "#" + anchor
		if _, exists := r.anchorMap[key]; !exists {
			r.anchorMap[key] = currentPointer
		}
	}

	for k, v := range obj {
		switch {
		case mapOfSchemasKeywords[k]:
			if m, ok := v.(map[string]any); ok {
				for propKey, propVal := range m {
					r.scanAnchors(propVal, base, currentPointer+"/"+pointer.Escape(k)+"/"+pointer.Escape(propKey))
				}
			}
		case singleSchemaKeywords[k]:
			r.scanAnchors(v, base, currentPointer+"/"+pointer.Escape(k))
		case arrayOfSchemasKeywords[k]:
			if arr, ok := v.([]any); ok {
				for i, item := range arr {
					r.scanAnchors(item, base, currentPointer+"/"+pointer.Escape(k)+"/"+strconv.Itoa(i))
				}
			}
		case k == "items":
			if arr, ok := v.([]any); ok {
				for i, item := range arr {
					r.scanAnchors(item, base, currentPointer+"/items/"+strconv.Itoa(i))
				}
			} else {
				r.scanAnchors(v, base, currentPointer+"/items")
			}
		}
	}
}

// resolve resolves a $ref string, per spec §4.2:
//
//  1. "#" or "#/..." -> JSON Pointer, looked up in the root document.
//  2. "#anchor" or "uri#anchor" -> looked up in the anchor map. An empty or
//     relative uri part is resolved against defaultBaseURI; the $id scope
//     of the node carrying the $ref is not taken into account.
//  3. otherwise -> Unresolvable.
func (r *resolverEngine) resolve(ref string) resolvedRef {
	if ref == "#" {
		return resolvedRef{pointerFragment: ""}
	}
	if strings.HasPrefix(ref, "#/") {
		return resolvedRef{pointerFragment: ref[1:]}
	}

	// "uri#anchor" or "#anchor": split at "#".
	hashIdx := strings.Index(ref, "#")
	var base, anchor string
	if hashIdx < 0 {
		base, anchor = ref, ""
	} else {
		base, anchor = ref[:hashIdx], ref[hashIdx+1:]
	}
	if anchor == "" {
		return resolvedRef{unresolvable: true}
	}
	if base == "" {
		base = defaultBaseURI
	} else if u, err := url.Parse(base); err == nil && !u.IsAbs() {
		if parsedDefault, err2 := url.Parse(defaultBaseURI); err2 == nil {
			base = parsedDefault.ResolveReference(u).String()
		}
	}
	if p, ok := r.anchorMap[base+"#"+anchor]; ok {
		return resolvedRef{pointerFragment: p}
	}
	return resolvedRef{unresolvable: true}
}

// navigate resolves a pointerFragment (e.g. "/$defs/Foo") against the root
// document, per the teacher's resolveJSONPointer helper.
func (r *resolverEngine) navigate(fragment string) (any, error) {
	return pointer.Navigate(r.root, fragment)
}

