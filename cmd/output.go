package cmd

import (
	"fmt"
	"io"
	"os"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation. Status lines go to statusOut (stderr) so that stdout carries
// only command results such as the TSV produced by embed.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / progress

var statusOut io.Writer = os.Stderr

// printSection prints a top-level section header, e.g. "=== Build ===".
func printSection(title string) {
	fmt.Fprintf(statusOut, "\n=== %s ===\n", title)
}

// printBullet prints a grouped-section bullet, e.g. "● Failed rows:".
func printBullet(title string) {
	fmt.Fprintf(statusOut, "\n● %s\n", title)
}

func printLine(icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(statusOut, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(statusOut, "  %s  [%s] %s\n", icon, name, msg)
	}
}

// printOK prints a success line.
//
//	name = "" → "  ✓  msg"
//	name set  → "  ✓  [name] msg"
func printOK(name, msg string) { printLine("✓", name, msg) }

// printErr prints an error line.
func printErr(name, msg string) { printLine("✗", name, msg) }

// printWarn prints a warning line.
func printWarn(name, msg string) { printLine("⚠", name, msg) }

// printSkip prints a skipped / not-applicable line.
func printSkip(name, msg string) { printLine("○", name, msg) }

// printMiss prints a not-found / missing line.
func printMiss(name, msg string) { printLine("-", name, msg) }

// printInfo prints a neutral informational / progress line.
func printInfo(name, msg string) { printLine("~", name, msg) }
