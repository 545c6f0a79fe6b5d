package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for the triage console.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-green gradient, friendlier than clinical white.
	s1 := termenv.String(" _        _                  ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("| |_ _ __(_) __ _  __ _  ___ ").Foreground(p.Color("#34d399"))
	s3 := termenv.String("| __| '__| |/ _` |/ _` |/ _ \\").Foreground(p.Color("#4ade80"))
	s4 := termenv.String("| |_| |  | | (_| | (_| |  __/").Foreground(p.Color("#a3e635"))
	s5 := termenv.String(" \\__|_|  |_|\\__,_|\\__, |\\___|").Foreground(p.Color("#facc15"))
	s6 := termenv.String("                  |___/      ").Foreground(p.Color("#fb923c"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
