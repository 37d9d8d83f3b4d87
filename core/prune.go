package core

// Reachable returns the project IDs reachable from explicit entries through their stored dependency lists
func Reachable(entries []Entry) map[string]bool {
	byProject := make(map[string]Entry, len(entries))
	var queue []string
	for _, e := range entries {
		byProject[e.ProjectID] = e
		if e.Explicit {
			queue = append(queue, e.ProjectID)
		}
	}
	reachable := make(map[string]bool, len(entries))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		if e, ok := byProject[id]; ok {
			for _, dep := range e.Dependencies {
				if !reachable[dep] {
					queue = append(queue, dep)
				}
			}
		}
	}
	return reachable
}

// Unreachable returns the implicit entries no explicit entry depends on, directly or transitively.
// Explicit entries are never returned.
func Unreachable(entries []Entry) []Entry {
	reachable := Reachable(entries)
	var orphans []Entry
	for _, e := range entries {
		if !e.Explicit && !reachable[e.ProjectID] {
			orphans = append(orphans, e)
		}
	}
	return orphans
}
