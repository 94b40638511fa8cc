package version

import (
	"fmt"
	"strconv"
)

// Version values are set at build time using -ldflags.
var Version = "dev"
var Major = "0"
var Minor = "0"
var Patch = "0"
var Built = ""
var GitCommit = ""

type VersionInfo struct {
	Version   string
	Major     int
	Minor     int
	Patch     int
	Built     string
	GitCommit string
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Major:     parseInt(Major),
		Minor:     parseInt(Minor),
		Patch:     parseInt(Patch),
		Built:     Built,
		GitCommit: GitCommit,
	}
}

// Line renders the --version output for program.
func (info VersionInfo) Line(program string) string {
	if info.Version == "" || info.Version == "dev" {
		return program + " dev"
	}
	line := fmt.Sprintf("%s version %s", program, info.Version)
	if info.GitCommit != "" {
		line += " (" + info.GitCommit + ")"
	}
	if info.Built != "" {
		line += " built " + info.Built
	}
	return line
}

func parseInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
