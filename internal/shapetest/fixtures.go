// Package shapetest holds fixture types shared across the engine's
// package tests: object-as-map/array structs, unions, enums, and
// self-referential types for reference-cycle coverage.
package shapetest

import "github.com/zoobzio/shapepack"

// Address is an object-as-map fixture: no mpkey tags, so every member
// forces map layout.
type Address struct {
	Street string `msgpack:"street"`
	City   string `msgpack:"city"`
	Zip    string `msgpack:"zip" required:"true"`
}

// Point is an object-as-array fixture: every member carries mpkey, so
// the object layer prefers array layout.
type Point struct {
	X int `msgpack:"x" mpkey:"0"`
	Y int `msgpack:"y" mpkey:"1"`
}

// DefaultsPerson is the spec's concrete default-values-elision fixture:
// Age and FavoriteColor both declare a default, so under the Never
// policy a value sitting at both defaults emits a map containing only
// Name.
type DefaultsPerson struct {
	Name          string `msgpack:"Name" required:"true"`
	Age           int    `msgpack:"Age" default:"0"`
	FavoriteColor string `msgpack:"FavoriteColor" default:"Blue"`
}

// GappedPerson is an object-as-array fixture whose declared keys skip
// 1: the gap is part of the schema, not created by eliding a member, so
// it must always produce the array form regardless of array slack.
type GappedPerson struct {
	First string `msgpack:"First" mpkey:"0"`
	Last  string `msgpack:"Last" mpkey:"2"`
}

// Person nests Address and a slice, exercising object composition plus
// sequence-of-scalar and nullable-of-object members.
type Person struct {
	Name    string    `msgpack:"name" required:"true"`
	Age     int       `msgpack:"age" default:"0"`
	Tags    []string  `msgpack:"tags"`
	Home    *Address  `msgpack:"home"`
	Unused  shapepack.UnusedData
}

// Node is self-referential, used for reference-preservation and
// cycle-handling coverage: under AllowCycles, Next may point back to an
// ancestor Node.
type Node struct {
	Value int    `msgpack:"value"`
	Next  *Node  `msgpack:"next"`
	Label string `msgpack:"label" default:""`
}

// Ring is a node with a single Peer pointer, used to build a cyclic graph
// that isn't just a single self-pointer (e.g. A -> B -> C -> A).
type Ring struct {
	Name string  `msgpack:"name"`
	Peer *Ring   `msgpack:"peer"`
}

// Level names a severity, registered as an enum with RegisterEnum by
// test setup; bare int with no registration serializes as a plain
// scalar, so tests that want enum-by-name behavior must register it.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LevelNames is the wire-name table tests register via RegisterEnum.
var LevelNames = map[int64]string{
	int64(LevelDebug): "debug",
	int64(LevelInfo):  "info",
	int64(LevelWarn):  "warn",
	int64(LevelError): "error",
}

// Shape is the union base interface for the Circle/Square fixtures.
type Shape interface {
	isShape()
}

// Circle and Square are registered as Shape's dispatchable sub-types by
// test setup (shapepack.RegisterUnion[Shape]).
type Circle struct {
	Radius float64 `msgpack:"radius" required:"true"`
}

func (Circle) isShape() {}

type Square struct {
	Side float64 `msgpack:"side" required:"true"`
}

func (Square) isShape() {}

// Cat and Dog are duck-typed union sub-types: Cat is uniquely
// identified by its required Meow field, Dog by its required Bark
// field, with no explicit discriminator on the wire.
type Animal interface {
	isAnimal()
}

type Cat struct {
	Meow bool   `msgpack:"meow" required:"true"`
	Name string `msgpack:"name"`
}

func (Cat) isAnimal() {}

type Dog struct {
	Bark bool   `msgpack:"bark" required:"true"`
	Name string `msgpack:"name"`
}

func (Dog) isAnimal() {}
