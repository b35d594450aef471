package converter

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
)

// memberConv pairs a member with its composed converter.
type memberConv struct {
	member shape.Member
	conv   Converter
}

// objectConverter implements spec §4.3: the property-level schema, the
// map/array layout decision on write, and the missing/extra/required/
// default policy on read.
type objectConverter struct {
	shape   *shape.Shape
	members []memberConv
	byName  map[string]int
	byKey   map[int]int
	// schemaHighestKey is the highest key declared anywhere in the
	// schema, independent of what a given write elides; used to measure
	// trailing (not interior) holes against PreferArraySlack.
	schemaHighestKey int
}

func (k *Kernel) composeObject(s *shape.Shape) (Converter, error) {
	oc := &objectConverter{shape: s, byName: map[string]int{}, byKey: map[int]int{}, schemaHighestKey: -1}
	for _, m := range s.Members {
		conv, err := k.Get(m.Shape)
		if err != nil {
			return nil, err
		}
		// Wire name reflects this Kernel's naming policy, applied here
		// rather than on the shared shape.Shape: the shape is cached once
		// per type across every Config, but the effective wire name is a
		// layout-affecting, per-Config concern (spec §6
		// property_naming_policy), and this converter already belongs to
		// exactly one Kernel/Config.
		if !m.HasExplicitName && k.naming != nil {
			m.Name = k.naming(m.Name)
		}
		idx := len(oc.members)
		oc.members = append(oc.members, memberConv{member: m, conv: conv})
		oc.byName[m.Name] = idx
		if m.Key != nil {
			oc.byKey[*m.Key] = idx
			if *m.Key > oc.schemaHighestKey {
				oc.schemaHighestKey = *m.Key
			}
		}
	}
	return oc, nil
}

func (c *objectConverter) CanBeReferencePreserved() bool { return true }

// --- write ---

type emittedMember struct {
	idx int
	val reflect.Value
}

func (c *objectConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	return writeWithReference(w, v, ctx, func() error {
		return c.writeBody(w, v, ctx)
	})
}

func (c *objectConverter) writeBody(w *Writer, v reflect.Value, ctx *Context) error {
	var emitted []emittedMember
	for i, mc := range c.members {
		if !mc.member.CanGet {
			continue
		}
		fv := mc.member.Get(v)
		include := mc.member.IsRequired ||
			ctx.SerializeDefaultValues.forces(mc.member.IsValueType) ||
			!isDefaultValue(mc.member, fv)
		if !include {
			continue
		}
		emitted = append(emitted, emittedMember{idx: i, val: fv})
	}

	var unused map[string][]byte
	if c.shape.UnusedDataField != nil {
		unused = readUnusedDataField(v, c.shape.UnusedDataField)
	}

	allKeyed := len(emitted) > 0
	highest := -1
	for _, e := range emitted {
		if c.members[e.idx].member.Key == nil {
			allKeyed = false
			break
		}
		if *c.members[e.idx].member.Key > highest {
			highest = *c.members[e.idx].member.Key
		}
	}

	// Only holes beyond the highest emitted key count against slack:
	// those come from this write eliding trailing defaulted members.
	// Gaps between declared keys (e.g. a schema with keys {0, 2} and no
	// member at 1) are inherent to the schema and always produce the
	// array form, regardless of slack.
	trailingHoles := c.schemaHighestKey - highest
	useArray := allKeyed && len(unused) == 0 && trailingHoles <= ctx.PreferArraySlack

	if useArray {
		return c.writeArray(w, v, ctx, emitted, highest)
	}
	return c.writeMap(w, v, ctx, emitted, unused)
}

func (c *objectConverter) writeArray(w *Writer, v reflect.Value, ctx *Context, emitted []emittedMember, highest int) error {
	bySlot := make(map[int]emittedMember, len(emitted))
	for _, e := range emitted {
		bySlot[*c.members[e.idx].member.Key] = e
	}
	n := highest + 1
	if err := w.Raw().WriteArrayHeader(n); err != nil {
		return cerr.WithPath(err, ctx.PathString())
	}
	for i := 0; i < n; i++ {
		e, ok := bySlot[i]
		if !ok {
			if err := w.Raw().WriteNil(); err != nil {
				return cerr.WithPath(err, ctx.PathString())
			}
			continue
		}
		mc := c.members[e.idx]
		mctx := ctx.Push(mc.member.Name)
		if err := mc.conv.Write(w, e.val, mctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *objectConverter) writeMap(w *Writer, v reflect.Value, ctx *Context, emitted []emittedMember, unused map[string][]byte) error {
	if err := w.Raw().WriteMapHeader(len(emitted) + len(unused)); err != nil {
		return cerr.WithPath(err, ctx.PathString())
	}
	for _, e := range emitted {
		mc := c.members[e.idx]
		if err := w.Raw().WriteString(mc.member.Name); err != nil {
			return cerr.WithPath(err, ctx.PathString())
		}
		mctx := ctx.Push(mc.member.Name)
		if err := mc.conv.Write(w, e.val, mctx); err != nil {
			return err
		}
	}

	// Deterministic order for test reproducibility; wire form does not
	// require any particular order among unused entries.
	names := make([]string, 0, len(unused))
	for name := range unused {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.Raw().WriteString(name); err != nil {
			return cerr.WithPath(err, ctx.PathString())
		}
		if err := w.Raw().WriteRaw(unused[name]); err != nil {
			return cerr.WithPath(err, ctx.PathString())
		}
	}
	return nil
}

// isDefaultValue reports whether v sits at m's default for the purposes
// of spec §4.3 step 1's elision decision. A member with no explicitly
// declared default still has an implicit one: its type's zero value.
// The declared default (explicit or implicit) is coerced to the
// member's type via coerceDefault before comparison, so a non-zero
// declared default (e.g. default:"5" on an int field) is not mistaken
// for the zero value.
func isDefaultValue(m shape.Member, v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	if m.HasDefault {
		if def := coerceDefault(m); def.IsValid() && def.Type() == v.Type() {
			return reflect.DeepEqual(v.Interface(), def.Interface())
		}
	}
	return reflect.DeepEqual(v.Interface(), reflect.Zero(v.Type()).Interface())
}

func readUnusedDataField(v reflect.Value, idx []int) map[string][]byte {
	fv := v.FieldByIndex(idx)
	if fv.IsNil() {
		return nil
	}
	out := make(map[string][]byte, fv.Len())
	iter := fv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Bytes()
	}
	return out
}

// --- read ---

func (c *objectConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	path := ctx.PathString()
	isNil, err := r.IsNil()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	if isNil {
		if err := r.ReadNil(); err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		return reflect.Zero(c.shape.Type), nil
	}

	if c.shape.Constructor.CanConstructEmpty {
		return readWithReferenceHole(r, ctx,
			func() reflect.Value { return reflect.New(c.shape.Type).Elem() },
			func(out reflect.Value, _ uint32) error { return c.populate(r, ctx, out) },
		)
	}
	return readWithReference(r, ctx, func(uint32) (reflect.Value, error) {
		out := reflect.New(c.shape.Type).Elem()
		return out, c.populate(r, ctx, out)
	})
}

// populate decodes the object body's members directly into an
// already-allocated out, so a reference cycle discovered mid-decode (spec
// §4.5.1, AllowCycles) can resolve to the very value being built.
func (c *objectConverter) populate(r *Reader, ctx *Context, out reflect.Value) error {
	path := ctx.PathString()
	seen := make(map[int]bool, len(c.members))
	var unused map[string][]byte

	if n, ok, err := r.TryReadArrayHeader(); err != nil {
		return cerr.WithPath(err, path)
	} else if ok {
		for i := 0; i < n; i++ {
			idx, hasMember := c.byKey[i]
			if !hasMember {
				raw, ok, err := c.captureSpan(r)
				if err != nil {
					return err
				}
				if ok && c.shape.UnusedDataField != nil {
					if unused == nil {
						unused = map[string][]byte{}
					}
					unused[strconv.Itoa(i)] = raw
				}
				continue
			}
			if seen[idx] {
				return cerr.At(cerr.CodeDuplicateProperty, path, nil)
			}
			seen[idx] = true
			if err := c.readMember(r, ctx, out, idx); err != nil {
				return err
			}
		}
	} else {
		n, err := r.ReadMapHeader()
		if err != nil {
			return cerr.WithPath(err, path)
		}
		for i := 0; i < n; i++ {
			name, err := r.ReadString()
			if err != nil {
				return cerr.WithPath(err, path)
			}
			idx, hasMember := c.byName[name]
			if !hasMember {
				raw, ok, err := c.captureSpan(r)
				if err != nil {
					return err
				}
				if ok && c.shape.UnusedDataField != nil {
					if unused == nil {
						unused = map[string][]byte{}
					}
					unused[name] = raw
				}
				continue
			}
			if seen[idx] {
				return cerr.At(cerr.CodeDuplicateProperty, path, nil)
			}
			seen[idx] = true
			if err := c.readMember(r, ctx, out, idx); err != nil {
				return err
			}
		}
	}

	var missing []string
	for i, mc := range c.members {
		if seen[i] {
			continue
		}
		if mc.member.IsRequired {
			if ctx.AllowMissingRequired {
				continue
			}
			missing = append(missing, mc.member.Name)
			continue
		}
		if mc.member.HasDefault && mc.member.CanSet {
			mc.member.Set(out, coerceDefault(mc.member))
		}
	}
	if len(missing) > 0 {
		return cerr.At(cerr.CodeMissingRequired, path, fmt.Errorf("missing: %v", missing))
	}

	if c.shape.UnusedDataField != nil {
		ft := out.FieldByIndex(c.shape.UnusedDataField).Type()
		m := reflect.MakeMapWithSize(ft, len(unused))
		for k, v := range unused {
			m.SetMapIndex(reflect.ValueOf(k), reflect.ValueOf(v))
		}
		out.FieldByIndex(c.shape.UnusedDataField).Set(m)
	}

	return nil
}

func (c *objectConverter) readMember(r *Reader, ctx *Context, out reflect.Value, idx int) error {
	mc := c.members[idx]
	mctx := ctx.Push(mc.member.Name)

	if !mc.member.IsNullable {
		isNil, err := r.IsNil()
		if err != nil {
			return cerr.WithPath(err, mctx.PathString())
		}
		if isNil {
			if !ctx.AllowNullForNonNullable {
				return cerr.At(cerr.CodeDisallowedNull, mctx.PathString(), nil)
			}
			if err := r.ReadNil(); err != nil {
				return cerr.WithPath(err, mctx.PathString())
			}
			return nil
		}
	}

	val, err := mc.conv.Read(r, mctx)
	if err != nil {
		return err
	}
	if mc.member.CanSet && val.IsValid() {
		mc.member.Set(out, val)
	}
	return nil
}

// captureSpan skips the next value and returns its raw encoded bytes,
// ok=false if the shape has no unused-data slot (the bytes are still
// consumed either way).
func (c *objectConverter) captureSpan(r *Reader) ([]byte, bool, error) {
	before := r.Remaining()
	if err := r.Skip(); err != nil {
		return nil, false, cerr.New(cerr.CodeMalformedFormat, err)
	}
	after := r.Remaining()
	raw := before[:len(before)-len(after)]
	return raw, c.shape.UnusedDataField != nil, nil
}

func coerceDefault(m shape.Member) reflect.Value {
	if m.Default == nil {
		return reflect.Zero(m.Shape.Type)
	}
	if defStr, ok := m.Default.(string); ok {
		rv := reflect.New(m.Shape.Type).Elem()
		switch rv.Kind() {
		case reflect.String:
			rv.SetString(defStr)
			return rv
		case reflect.Bool:
			rv.SetBool(defStr == "true")
			return rv
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			var iv int64
			fmt.Sscanf(defStr, "%d", &iv)
			rv.SetInt(iv)
			return rv
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			var uv uint64
			fmt.Sscanf(defStr, "%d", &uv)
			rv.SetUint(uv)
			return rv
		case reflect.Float32, reflect.Float64:
			var fv float64
			fmt.Sscanf(defStr, "%g", &fv)
			rv.SetFloat(fv)
			return rv
		default:
			return reflect.Zero(m.Shape.Type)
		}
	}
	v := reflect.ValueOf(m.Default)
	if v.Type() == m.Shape.Type {
		return v
	}
	return reflect.Zero(m.Shape.Type)
}
