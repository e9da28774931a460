package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Info is the build metadata of the running binary
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Compiler  string `json:"compiler"`
	Source    string `json:"source,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Hash      string `json:"hash,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	Platform  string `json:"platform,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Set with -ldflags "-X github.com/dilettacal/digital-twin/pkg/version.GitTag=..."
var (
	GitTag    string
	GitBranch string
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Version returns the tag, branch or short revision the binary was built from
func Version() string {
	if GitTag != "" {
		return GitTag
	}
	if GitBranch != "" {
		return GitBranch
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				return s.Value[:12]
			}
		}
	}
	return "dev"
}

// UserAgent returns the value sent in the User-Agent header by clients
func UserAgent(execName string) string {
	return execName + "/" + Version()
}

// Metadata returns the build metadata for the named executable
func Metadata(execName string) Info {
	metadata := Info{
		Name:     execName,
		Version:  Version(),
		Compiler: runtime.Version(),
		Tag:      GitTag,
		Branch:   GitBranch,
	}

	// Add build info from runtime/debug
	var goos, goarch string
	if info, ok := debug.ReadBuildInfo(); ok {
		metadata.Source = info.Main.Path
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				metadata.Hash = s.Value
			case "vcs.time":
				metadata.BuildTime = s.Value
			case "vcs.modified":
				metadata.Modified = s.Value == "true"
			case "GOOS":
				goos = s.Value
			case "GOARCH":
				goarch = s.Value
			}
		}
	}
	if goos != "" && goarch != "" {
		metadata.Platform = goos + "/" + goarch
	}
	return metadata
}

// JSON returns the build metadata as indented JSON
func JSON(execName string) []byte {
	data, err := json.MarshalIndent(Metadata(execName), "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}
