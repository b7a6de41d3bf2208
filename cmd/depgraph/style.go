package main

import "github.com/fatih/color"

var (
	bold       = color.New(color.Bold).SprintFunc()
	dim        = color.New(color.Faint).SprintFunc()
	cyan       = color.New(color.FgCyan).SprintFunc()
	green      = color.New(color.FgGreen).SprintFunc()
	boldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	boldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	boldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	magenta    = color.New(color.FgMagenta).SprintFunc()
)
