package oriel

// Attr identifies one rasterizer state attribute. Attr values combine into
// a bitmask.
type Attr uint8

const (
	AttrCullMode Attr = 1 << iota
	AttrWriteDepth
	AttrDepthFunc
	AttrBlend
	AttrWriteColor
)

// AttrAll is the set of every attribute.
const AttrAll = AttrCullMode | AttrWriteDepth | AttrDepthFunc | AttrBlend | AttrWriteColor

// Has reports whether every attribute in a is in s.
func (s Attr) Has(a Attr) bool { return s&a == a }

// RasterizerState is a sparse set of rasterizer attributes. An attribute is
// either declared (this layer has an opinion) or inherited. A declared
// attribute may also be important: it then wins over a non-important
// opinion further down the tree.
//
// The zero value declares nothing.
type RasterizerState struct {
	cullMode   CullMode
	writeDepth bool
	depthFunc  DepthFunc
	blend      BlendMode
	writeColor bool

	declared  Attr
	important Attr
}

// DefaultRasterizerState is used for every attribute left undeclared by the
// whole ancestor chain.
var DefaultRasterizerState = RasterizerState{
	cullMode:   CullBack,
	writeDepth: true,
	depthFunc:  DepthLess,
	blend:      BlendNormal,
	writeColor: true,
	declared:   AttrAll,
}

// SetCullMode declares the cull mode.
func (r *RasterizerState) SetCullMode(m CullMode) *RasterizerState {
	r.cullMode = m
	r.declared |= AttrCullMode
	return r
}

// SetWriteDepth declares whether depth writes are enabled.
func (r *RasterizerState) SetWriteDepth(on bool) *RasterizerState {
	r.writeDepth = on
	r.declared |= AttrWriteDepth
	return r
}

// SetDepthFunc declares the depth comparison.
func (r *RasterizerState) SetDepthFunc(f DepthFunc) *RasterizerState {
	r.depthFunc = f
	r.declared |= AttrDepthFunc
	return r
}

// SetBlend declares the blend mode.
func (r *RasterizerState) SetBlend(b BlendMode) *RasterizerState {
	r.blend = b
	r.declared |= AttrBlend
	return r
}

// SetWriteColor declares whether color writes are enabled.
func (r *RasterizerState) SetWriteColor(on bool) *RasterizerState {
	r.writeColor = on
	r.declared |= AttrWriteColor
	return r
}

// SetImportant marks the given declared attributes as important (or clears
// the mark when important is false). Undeclared attributes are ignored.
func (r *RasterizerState) SetImportant(attrs Attr, important bool) *RasterizerState {
	if important {
		r.important |= attrs & r.declared
	} else {
		r.important &^= attrs
	}
	return r
}

// Undeclare drops this layer's opinion on attrs so they are inherited again.
func (r *RasterizerState) Undeclare(attrs Attr) *RasterizerState {
	r.declared &^= attrs
	r.important &^= attrs
	return r
}

// Declared returns the set of declared attributes.
func (r RasterizerState) Declared() Attr { return r.declared }

// Important returns the set of important attributes.
func (r RasterizerState) Important() Attr { return r.important }

func (r RasterizerState) CullMode() CullMode   { return r.cullMode }
func (r RasterizerState) WriteDepth() bool     { return r.writeDepth }
func (r RasterizerState) DepthFunc() DepthFunc { return r.depthFunc }
func (r RasterizerState) Blend() BlendMode     { return r.blend }
func (r RasterizerState) WriteColor() bool     { return r.writeColor }

// copyAttrs copies the values of attrs from src into r.
func (r *RasterizerState) copyAttrs(src *RasterizerState, attrs Attr) {
	if attrs&AttrCullMode != 0 {
		r.cullMode = src.cullMode
	}
	if attrs&AttrWriteDepth != 0 {
		r.writeDepth = src.writeDepth
	}
	if attrs&AttrDepthFunc != 0 {
		r.depthFunc = src.depthFunc
	}
	if attrs&AttrBlend != 0 {
		r.blend = src.blend
	}
	if attrs&AttrWriteColor != 0 {
		r.writeColor = src.writeColor
	}
}

// Flatten merges a parent layer with a more specific child layer:
//
//	declared(merged)  = declared(parent) ∪ declared(child)
//	important(merged) = important(parent) ∪ important(child)
//	fromParent        = important(parent) ∪ (declared(parent) \ declared(child))
//	fromChild         = declared(merged) \ fromParent
//
// An attribute in important(parent) always lies in fromParent, so it keeps
// the parent's value whatever the child declares for it. Folding is
// associative, so a chain may be flattened in any grouping as long as
// root-to-leaf order is kept.
func Flatten(parent, child RasterizerState) RasterizerState {
	var merged RasterizerState
	merged.declared = parent.declared | child.declared
	merged.important = parent.important | child.important
	fromParent := parent.important | (parent.declared &^ child.declared)
	fromChild := merged.declared &^ fromParent
	merged.copyAttrs(&child, fromChild)
	merged.copyAttrs(&parent, fromParent)
	return merged
}

// FlattenChain folds states from root (first) to leaf (last).
func FlattenChain(states ...RasterizerState) RasterizerState {
	var merged RasterizerState
	for _, s := range states {
		merged = Flatten(merged, s)
	}
	return merged
}

// Resolve fills every undeclared attribute from defaults. The result
// declares every attribute that defaults declares.
func (r RasterizerState) Resolve(defaults RasterizerState) RasterizerState {
	out := r
	missing := defaults.declared &^ r.declared
	out.copyAttrs(&defaults, missing)
	out.declared |= missing
	return out
}

// flattenNodeChain folds the Rasterizer of every node in chain (root first).
func flattenNodeChain(chain []*Node) RasterizerState {
	var merged RasterizerState
	for _, n := range chain {
		merged = Flatten(merged, n.Rasterizer)
	}
	return merged.Resolve(DefaultRasterizerState)
}
