package version

import (
	"encoding/json"
	"runtime/debug"
)

// Commit and Time are read from the vcs build settings.
var Commit, Time = func() (string, string) {
	commit, ts := "dev", ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
			if setting.Key == "vcs.time" {
				ts = setting.Value
			}
		}
	}
	return commit, ts
}()

// Version is the build info as json, suitable for the startup log line.
var Version = func() string {
	b, _ := json.Marshal(struct {
		Commit string `json:"commit"`
		Time   string `json:"time"`
	}{Commit, Time})
	return string(b)
}()
