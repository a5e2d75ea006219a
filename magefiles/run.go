//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Validates the shaders and runs the triangle example.
func (Run) Tri() error {
	mg.Deps(Shaders.Validate)
	return runExample("tri")
}

// Runs the perlin noise example.
func (Run) Perlin() error {
	mg.Deps(Shaders.Validate)
	return runExample("perlin")
}

func runExample(name string) error {
	fmt.Printf("Run example %s...\n", name)
	_, err := executeCmd("go", withArgs("run", "./examples/"+name), withStream())
	return err
}

// Runs the instanced fly-through example.
func (Run) Fly() error {
	mg.Deps(Shaders.Validate)
	return runExample("fly")
}
