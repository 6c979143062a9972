package auth

// Scopes returns the capability scope list for the server. Read-only mode
// swaps in the narrow variants where Google provides them. The script.*
// scopes cover project content, deployments, processes, and metrics; the
// scriptapp and storage scopes are what generated snippets executed via
// scripts.run need for trigger and property access; Drive covers project
// listing and trash.
func Scopes(readOnly bool) []string {
	if readOnly {
		return []string{
			"https://www.googleapis.com/auth/script.projects.readonly",
			"https://www.googleapis.com/auth/script.deployments.readonly",
			"https://www.googleapis.com/auth/script.processes",
			"https://www.googleapis.com/auth/script.metrics",
			"https://www.googleapis.com/auth/drive.readonly",
		}
	}
	return []string{
		"https://www.googleapis.com/auth/script.projects",
		"https://www.googleapis.com/auth/script.deployments",
		"https://www.googleapis.com/auth/script.processes",
		"https://www.googleapis.com/auth/script.metrics",
		"https://www.googleapis.com/auth/script.scriptapp",
		"https://www.googleapis.com/auth/script.storage",
		"https://www.googleapis.com/auth/drive",
	}
}
