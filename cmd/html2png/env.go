package main

import (
	"io"
	"os"
	"time"

	html2png "github.com/alnah/go-html2png"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Engines starts the browser; nil launches headless Chrome.
	Engines html2png.EngineFactory
	// Runner executes the rasterizer; nil uses os/exec.
	Runner html2png.CommandRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
