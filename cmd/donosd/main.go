// Command donosd runs the recursive-forwarding DNS resolver and its
// supporting blocklist tooling. It has two subcommands: "dns" runs the
// server, "blocklist" populates the persistent filter backing store.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "donosd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing subcommand")
	}

	switch args[0] {
	case "dns":
		return runDNSCommand(args[1:])
	case "blocklist":
		return runBlocklistCommand(args[1:])
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: donosd <dns|blocklist> [flags]")
	fmt.Fprintln(os.Stderr, "  donosd dns --config <path>")
	fmt.Fprintln(os.Stderr, "  donosd blocklist sync --config <path> --url <url> --description <text>")
	fmt.Fprintln(os.Stderr, "  donosd blocklist list --config <path>")
}

// newFlagSet builds a flag.FlagSet that writes usage errors to stderr
// without exiting the process itself, matching main's single os.Exit path.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return fs
}
