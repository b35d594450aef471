package shapepack

import (
	"github.com/zoobzio/shapepack/converter"
	"github.com/zoobzio/shapepack/reference"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/wire"
)

// Config is the serializer value object (spec §4's "Config surface",
// §6's recognized options). It is immutable: every With* option returns
// a new Config, and changing any layout-affecting flag gets a fresh
// converter cache rather than mutating a previously frozen one (spec
// §4.1 "Reconfiguration reset").
type Config struct {
	namingPolicy shape.NamingPolicy
	namingKind   int

	referenceMode reference.Mode

	internStrings           bool
	preserveStringIdentity  bool
	serializeDefaultValues  converter.DefaultValuesPolicy
	allowMissingRequired    bool
	allowNullForNonNullable bool
	serializeEnumsByName    bool
	preferArraySlack        int

	assumedDateTimeKind wire.DateTimeKind
	hiFiDateTime        bool
	maxAsyncBuffer      int

	factories []converter.Factory

	kernel *converter.Kernel
}

// Option mutates a Config under construction; applied by New and With.
type Option func(*Config)

const (
	namingIdentity = iota
	namingCamelCase
	namingSnakeCase
)

// New builds a Config from its defaults plus opts. Defaults: identity
// naming, reference preservation off, default-values omitted on write,
// missing required properties rejected, nulls rejected for non-nullable
// members, enums serialized by ordinal, zero array slack (array layout
// not chosen once a write's elided members leave trailing holes; gaps
// between the schema's own declared keys never count against it).
func New(opts ...Option) *Config {
	c := &Config{
		namingPolicy:  shape.Identity,
		namingKind:    namingIdentity,
		referenceMode: reference.Off,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.kernel = converter.New(c.layoutHash(), c.factories, c.namingPolicy)
	return c
}

// With returns a copy of c with opts applied, rebuilding the converter
// cache only if a layout-affecting option actually changed (spec
// "Reconfiguration reset": "converters already published in a previous
// cache remain valid only within that previous serializer value").
func (c *Config) With(opts ...Option) *Config {
	cp := *c
	before := c.layoutHash()
	for _, opt := range opts {
		opt(&cp)
	}
	if cp.layoutHash() != before {
		cp.kernel = converter.New(cp.layoutHash(), cp.factories, cp.namingPolicy)
	}
	return &cp
}

// layoutHash folds every layout-affecting flag into one comparable value
// (spec §3 cache key: "shape identity, shape provider identity,
// config-flags-that-affect-layout").
func (c *Config) layoutHash() uint64 {
	var h uint64
	h |= uint64(c.namingKind)
	h |= uint64(c.referenceMode) << 4
	h |= boolBit(c.internStrings) << 8
	h |= boolBit(c.preserveStringIdentity) << 9
	h |= uint64(c.serializeDefaultValues&0x7) << 10
	h |= boolBit(c.allowMissingRequired) << 13
	h |= boolBit(c.allowNullForNonNullable) << 14
	h |= boolBit(c.serializeEnumsByName) << 15
	h |= uint64(c.preferArraySlack&0xff) << 16
	h |= uint64(c.assumedDateTimeKind) << 24
	h |= boolBit(c.hiFiDateTime) << 27
	return h
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// WithPropertyNaming sets the naming policy applied to every object
// shape's members at composition time.
func WithPropertyNaming(policy shape.NamingPolicy, kind int) Option {
	return func(c *Config) {
		c.namingPolicy = policy
		c.namingKind = kind
	}
}

// WithCamelCase is a convenience for WithPropertyNaming(shape.CamelCase, ...).
func WithCamelCase() Option { return WithPropertyNaming(shape.CamelCase, namingCamelCase) }

// WithSnakeCase is a convenience for WithPropertyNaming(shape.SnakeCase, ...).
func WithSnakeCase() Option { return WithPropertyNaming(shape.SnakeCase, namingSnakeCase) }

// WithReferencePreservation sets the reference tracker mode (spec §4.5).
func WithReferencePreservation(mode reference.Mode) Option {
	return func(c *Config) { c.referenceMode = mode }
}

// WithInternStrings enables string interning on read (independent of
// reference preservation, per spec §4.5 invariants).
func WithInternStrings(enabled bool) Option {
	return func(c *Config) { c.internStrings = enabled }
}

// WithPreserveStringIdentity extends reference tracking to strings (off
// by default: spec §4.5 "strings are reference-tracked only when the
// flag preserve_string_identity is on").
func WithPreserveStringIdentity(enabled bool) Option {
	return func(c *Config) { c.preserveStringIdentity = enabled }
}

// WithSerializeDefaultValues controls which members equal to their
// default are still emitted (spec §4.3 step 1, §6 serialize_default_values):
// a bitwise combination of converter.Required, converter.ValueTypes, and
// converter.ReferenceTypes, or converter.Always for all of them.
func WithSerializeDefaultValues(policy converter.DefaultValuesPolicy) Option {
	return func(c *Config) { c.serializeDefaultValues = policy }
}

// WithAllowMissingRequired relaxes MissingRequiredProperty into a
// default-value substitution (spec §4.3 "unless allow_missing_required
// is set").
func WithAllowMissingRequired(enabled bool) Option {
	return func(c *Config) { c.allowMissingRequired = enabled }
}

// WithAllowNullForNonNullable relaxes DisallowedNullValue.
func WithAllowNullForNonNullable(enabled bool) Option {
	return func(c *Config) { c.allowNullForNonNullable = enabled }
}

// WithSerializeEnumsByName switches enum encoding from ordinal to name.
func WithSerializeEnumsByName(enabled bool) Option {
	return func(c *Config) { c.serializeEnumsByName = enabled }
}

// WithArraySlack sets how many trailing nil holes an object-as-array
// emission may introduce before the converter falls back to map layout
// (spec §4.3 step 2).
func WithArraySlack(slack int) Option {
	return func(c *Config) { c.preferArraySlack = slack }
}

// WithAssumedDateTimeKind sets the kind assumed for a time.Time read from
// a plain timestamp, which carries no zone information; it applies
// whether or not hi-fi datetime encoding is active.
func WithAssumedDateTimeKind(kind wire.DateTimeKind) Option {
	return func(c *Config) { c.assumedDateTimeKind = kind }
}

// WithHiFiDateTime enables the non-UTC [ticks, kind] wire form (spec §6).
func WithHiFiDateTime(enabled bool) Option {
	return func(c *Config) { c.hiFiDateTime = enabled }
}

// WithMaxAsyncBuffer sets the async writer's flush threshold (spec §6
// max_async_buffer).
func WithMaxAsyncBuffer(n int) Option {
	return func(c *Config) { c.maxAsyncBuffer = n }
}

// WithConverterFactory registers a user converter factory, consulted
// before intrinsic composition (spec §4.1).
func WithConverterFactory(f converter.Factory) Option {
	return func(c *Config) { c.factories = append(c.factories, f) }
}

// newContext builds a fresh per-call Context (spec §3 Lifecycle:
// "Reference tables: created per serialize/deserialize call; discarded
// at the end").
func (c *Config) newContext() *converter.Context {
	return &converter.Context{
		Refs:                    reference.New(c.referenceMode),
		SerializeDefaultValues:  c.serializeDefaultValues,
		AllowMissingRequired:    c.allowMissingRequired,
		AllowNullForNonNullable: c.allowNullForNonNullable,
		PreferArraySlack:        c.preferArraySlack,
		SerializeEnumsByName:    c.serializeEnumsByName,
		PreserveStringIdentity:  c.preserveStringIdentity,
		InternStrings:           c.internStrings,
		HiFiDateTime:            c.hiFiDateTime,
		AssumedDateTimeKind:     c.assumedDateTimeKind,
	}
}
