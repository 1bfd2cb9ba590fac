/*
Package version reports build information for idkit binaries.
The package variables are set at build time with -ldflags:

	go build -ldflags "-X idkit.io/v2/pkg/version.version=1.0.0 -X idkit.io/v2/pkg/version.revision=$(git rev-parse HEAD)"

Unset values report "unknown".
*/
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	goversion "rsc.io/goversion/version"
)

var (
	version   = "unknown"
	branch    = "unknown"
	revision  = "unknown"
	buildDate = "unknown"
	buildUser = "unknown"
	appName   = "idkit"
)

// Info holds version and build info about the program.
type Info struct {
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	Revision  string `json:"revision"`
	BuildDate string `json:"build_date"`
	BuildUser string `json:"build_user"`
}

// Version returns the current version information.
func Version() Info {
	return Info{
		Version:   version,
		Branch:    branch,
		Revision:  revision,
		BuildDate: buildDate,
		BuildUser: buildUser,
	}
}

// Print writes the app name and version string to w.
func Print(w io.Writer) {
	fmt.Fprintf(w, "%s version %s\n", appName, Version().Version)
}

// PrintFull writes the app name, build details and the Go release of the
// running executable to w.
func PrintFull(w io.Writer) error {
	v := Version()
	fmt.Fprintf(w, "%s - version %s\n", appName, v.Version)
	fmt.Fprintf(w, "branch: \t%s\n", v.Branch)
	fmt.Fprintf(w, "revision: \t%s\n", v.Revision)
	fmt.Fprintf(w, "build date: \t%s\n", v.BuildDate)
	fmt.Fprintf(w, "build user: \t%s\n", v.BuildUser)

	binary, err := os.Executable()
	if err != nil {
		return err
	}

	binVersion, err := goversion.ReadExe(binary)
	if err != nil {
		return fmt.Errorf("read go version of %s: %w", binary, err)
	}
	fmt.Fprintf(w, "go release: \t%s\n", binVersion.Release)
	return nil
}

// Handler provides an HTTP Handler which returns JSON formatted version info.
func Handler() http.Handler {
	v := Version()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(v)
	})
}
