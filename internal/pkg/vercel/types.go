package vercel

// Project is the subset of a Vercel project the dashboard cares about.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Framework string `json:"framework,omitempty"`
}

// AccountInfo describes the user or team behind an installation.
type AccountInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// EnvironmentVariable is one entry in a batch env-var upsert. Type is forced
// to "encrypted" and Target defaults to all three environments when empty.
type EnvironmentVariable struct {
	Key       string   `json:"key"`
	Value     string   `json:"value"`
	Type      string   `json:"type,omitempty"`
	Target    []string `json:"target,omitempty"`
	GitBranch string   `json:"gitBranch,omitempty"`
}

// EnvUpsertResult reports how many variables the batch write created vs
// updated.
type EnvUpsertResult struct {
	Created int
	Updated int
}

// EnvListEntry is a stored env var as reported by the list endpoint; the ID
// is what the delete endpoint addresses.
type EnvListEntry struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
