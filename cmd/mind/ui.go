package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// printBanner outputs the ASCII art banner for Mind.
func printBanner() {
	p := termenv.ColorProfile()
	// Subtle gradient color scheme (Indigo/Violet)
	s1 := termenv.String("  __  __ _           _ ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String(" |  \\/  (_)_ __   __| |").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | |\\/| | | '_ \\ / _` |").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" | |  | | | | | | (_| |").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" |_|  |_|_|_| |_|\\__,_|").Foreground(p.Color("#f472b6"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}

// newRenderer returns a function that renders markdown using glamour.
func newRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
