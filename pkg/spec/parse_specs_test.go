package spec_test

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

func parseSpecFilesInFS(fsys fs.FS) []spec {
	var specs []spec
	fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, _ error) error {
		if !d.Type().IsDir() && strings.HasSuffix(path, ".test.sh") {
			content, _ := fs.ReadFile(fsys, path)
			specs = append(specs, parseSpecFile(path, string(content))...)
		}
		return nil
	})
	return specs
}

// Parses a spec file. Each spec starts with a "#### name" line, followed by
// code lines and then metadata lines of the form "## key: value":
//
//   - status, stdout and stderr give the expected exit status and output;
//     stdout and stderr get a newline appended.
//
//   - stdout-json and stderr-json give the output as a JSON string.
//
//   - STDOUT and STDERR start a multi-line output terminated by "## END".
//
//   - argv-json gives the positional parameters as a JSON array.
//
// Giving the same key more than once lists acceptable alternatives.
func parseSpecFile(filename, content string) []spec {
	var specs []spec
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	i := 0

	warn := func(msg string) {
		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v\n", filename, i+1, msg, lines[i])
	}
	readMultiLine := func() string {
		var b strings.Builder
		for i++; i < len(lines) && lines[i] != "## END"; i++ {
			b.WriteString(lines[i])
			b.WriteByte('\n')
		}
		return b.String()
	}

	for i < len(lines) {
		// Skip to the name line
		for ; i < len(lines) && !isName(lines[i]); i++ {
			if isMetadata(lines[i]) {
				warn("metadata line before spec")
			} else if !isEmptyOrComment(lines[i]) {
				warn("code line before spec")
			}
		}
		if i == len(lines) {
			break
		}
		name := lines[i][len(namePrefix):]
		var codeBuilder strings.Builder
		var argv []string
		var status []int
		var stdout, stderr []string
		// Parse code lines
		for i++; i < len(lines) && !isName(lines[i]) && !isMetadata(lines[i]); i++ {
			codeBuilder.WriteString(lines[i])
			codeBuilder.WriteByte('\n')
		}
		// Parse metadata lines, possibly with empty lines
		for ; i < len(lines) && (isMetadata(lines[i]) || lines[i] == ""); i++ {
			if lines[i] == "" {
				continue
			}
			key, value, ok := strings.Cut(lines[i][len(metadataPrefix):], ":")
			if !ok {
				warn("can't parse key from metadata")
				continue
			}
			value = strings.TrimLeft(value, " ")
			switch key {
			case "argv-json":
				if err := json.Unmarshal([]byte(value), &argv); err != nil {
					warn("can't parse argv-json as JSON")
				}
			case "status":
				n, err := strconv.Atoi(value)
				if err != nil {
					warn("can't parse status as number")
				} else {
					status = append(status, n)
				}
			case "stdout":
				stdout = append(stdout, value+"\n")
			case "stderr":
				stderr = append(stderr, value+"\n")
			case "stdout-json", "stderr-json":
				var s string
				if err := json.Unmarshal([]byte(value), &s); err != nil {
					warn("can't parse " + key + " as JSON")
				} else if key == "stdout-json" {
					stdout = append(stdout, s)
				} else {
					stderr = append(stderr, s)
				}
			case "STDOUT":
				stdout = append(stdout, readMultiLine())
			case "STDERR":
				stderr = append(stderr, readMultiLine())
			default:
				warn("unknown key " + key)
			}
		}
		if len(status) == 0 {
			status = []int{0}
		}
		specs = append(specs, spec{
			filename, name, codeBuilder.String(), argv, status, stdout, stderr})
	}
	return specs
}

const (
	namePrefix     = "#### "
	metadataPrefix = "## "
)

func isName(line string) bool { return strings.HasPrefix(line, namePrefix) }

func isMetadata(line string) bool { return strings.HasPrefix(line, metadataPrefix) }

func isEmptyOrComment(line string) bool {
	return line == "" || (strings.HasPrefix(line, "#") && !isName(line) && !isMetadata(line))
}
