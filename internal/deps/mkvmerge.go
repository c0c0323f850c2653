package deps

// MkvmergeRequirement describes the mkvmerge binary at command.
func MkvmergeRequirement(command string) Requirement {
	return Requirement{
		Name:        "mkvmerge",
		Command:     command,
		Description: "Required for merging (MKVToolNix)",
		VersionArgs: []string{"--version"},
	}
}
