package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown before interactive
// playback.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Warm gradient, amber into rose
	s1 := termenv.String(" _    _                  __ _               ").Foreground(p.Color("#fbbf24"))
	s2 := termenv.String("| | _(_)_ __   ___  ___ / _| | _____      __").Foreground(p.Color("#f59e0b"))
	s3 := termenv.String("| |/ / | '_ \\ / _ \\|  _| |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#f97316"))
	s4 := termenv.String("|   <| | | | | (_) | | |  _| | (_) \\ V  V / ").Foreground(p.Color("#fb7185"))
	s5 := termenv.String("|_|\\_\\_|_| |_|\\___/|_| |_| |_|\\___/ \\_/\\_/  ").Foreground(p.Color("#f43f5e"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
	fmt.Println(termenv.String("  interactive video conversations · " + version).Faint())
	fmt.Println()
}
