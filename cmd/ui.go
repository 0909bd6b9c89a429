/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	isTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// Color helpers
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	white  = color.New(color.FgWhite, color.Bold).SprintFunc()
)

func readStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

// verbColor colors an HTTP method the way the documentation page does.
func verbColor(verb string) string {
	switch verb {
	case "GET":
		return green(verb)
	case "DELETE":
		return red(verb)
	case "POST", "PUT", "PATCH":
		return yellow(verb)
	default:
		return cyan(verb)
	}
}
