package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "new":
		err = runNew(os.Args[2:])
	case "theme":
		err = runTheme(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "version", "--version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`folio - A markdown blog viewer built with Go, Echo, and templ

Usage:
  folio <command> [flags] [arguments]

Commands:
  serve               Serve the site in the current directory
  new <dir>           Create a starter site
  theme [light|dark]  Show or set the site default theme
  render <slug>       Print the rendered body of a post
  version             Print the folio version
  help                Show this help message

Run 'folio <command> --help' for the flags of a command.

Examples:
  folio new myblog
  folio serve --assets myblog --dev
  folio theme dark`)
}
