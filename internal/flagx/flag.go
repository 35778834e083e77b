// Package flagx helps several components share os.Args: each one filters
// out just the flags it owns before handing them to its own flag.FlagSet.
package flagx

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the given flags.
//
// valueFlags take a value, either as the next argument (-bucket media) or
// joined with '=' (-bucket=media). A lone "-" counts as a value so callers
// can use it as a "prompt me" marker. boolFlags never consume the next
// argument; the "-flag=false" form is kept as-is. The "--flag" spelling is
// accepted and returned as "-flag".
//
// The result is never nil.
func FilterArgs(args []string, valueFlags []string, boolFlags ...string) []string {
	takesValue := flagTable(valueFlags, boolFlags)
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := normalize(args[i])

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := takesValue[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		hasValue, ok := takesValue[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)

		if hasValue && i+1 < len(args) && isValue(args[i+1]) {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// UnknownFlags returns the flag-looking arguments of args that are neither
// valueFlags nor boolFlags, in their original spelling. Values of known
// value flags and everything after "--" are skipped.
func UnknownFlags(args []string, valueFlags []string, boolFlags ...string) []string {
	takesValue := flagTable(valueFlags, boolFlags)
	var unknown []string

	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
		arg := normalize(args[i])
		if isValue(arg) {
			continue
		}

		name, _, hasEq := strings.Cut(arg, "=")
		hasValue, ok := takesValue[name]
		if !ok {
			unknown = append(unknown, args[i])
			continue
		}
		if hasValue && !hasEq && i+1 < len(args) && isValue(args[i+1]) {
			i++
		}
	}
	return unknown
}

func flagTable(valueFlags, boolFlags []string) map[string]bool {
	takesValue := make(map[string]bool, len(valueFlags)+len(boolFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}
	for _, f := range boolFlags {
		takesValue[f] = false
	}
	return takesValue
}

// normalize turns "--name" into "-name".
func normalize(arg string) string {
	if len(arg) > 2 && strings.HasPrefix(arg, "--") {
		return arg[1:]
	}
	return arg
}

func isValue(s string) bool {
	if s == "-" || !strings.HasPrefix(s, "-") {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// JsonConfigFlags returns the config file path given with -c or -config,
// or an empty string when neither is present.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
