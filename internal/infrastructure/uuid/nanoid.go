package uuid

import gonanoid "github.com/matoous/go-nanoid"

// Generator random ID generator interface
type Generator interface {
	Generate() (string, error)
}

// NanoIDGenerator Generator implementation using NanoID
type NanoIDGenerator struct {
	Length int
}

var _ Generator = &NanoIDGenerator{}

// NewNanoIDGenerator create a new `NanoIDGenerator` instance
func NewNanoIDGenerator(length int) *NanoIDGenerator {
	if length < 1 {
		panic("length must be larger than 1")
	}
	return &NanoIDGenerator{Length: length}
}

// Generate generate a random ID
func (ns *NanoIDGenerator) Generate() (string, error) {
	return gonanoid.Nanoid(ns.Length)
}
