//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/rhachis/graphics"
	"github.com/magefile/mage/mg"
)

type Shaders mg.Namespace

// Compiles every WGSL file under graphics/shaders, plus $RHACHIS_SHADER_DIR
// when set, and reports all failures.
func (Shaders) Validate() error {
	dirs := []string{filepath.Join("graphics", "shaders")}
	if dir := os.Getenv("RHACHIS_SHADER_DIR"); dir != "" {
		dirs = append(dirs, dir)
	}

	var errs []error
	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.wgsl"))
		if err != nil {
			return err
		}
		for _, file := range files {
			src, err := os.ReadFile(file)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			iface, err := graphics.NagaCompiler{}.Compile(file, string(src))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Printf("ok  %s (%d vertex entries, %d bindings)\n", file, len(iface.VertexEntries), len(iface.Bindings))
		}
	}
	return errors.Join(errs...)
}
