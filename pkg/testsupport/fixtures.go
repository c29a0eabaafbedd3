// Package testsupport exposes shared configuration fixtures for tests across
// the module.
package testsupport

import (
	"embed"
	"io/fs"
	"testing"
)

//go:embed testdata/*
var fixtures embed.FS

// FS returns the fixture filesystem rooted at testdata.
func FS() fs.FS {
	sub, err := fs.Sub(fixtures, "testdata")
	if err != nil {
		panic(err)
	}
	return sub
}

// Fixture returns the raw bytes of a named fixture, failing the test when it
// does not exist.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fs.ReadFile(FS(), name)
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return data
}
