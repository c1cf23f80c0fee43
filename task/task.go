package task

// Task is one discovered task directory. Tasks are immutable after Scan.
type Task struct {
	// Name is the directory name.
	Name string
	// Dir is the absolute path of the task directory.
	Dir string
	// Kind is the runtime kind, nil when no entry script was found.
	Kind Kind
	// HasEntry reports that the kind's entry script exists.
	HasEntry bool
	// HasManifest reports that the kind's dependency manifest exists.
	HasManifest bool
}

// KindName returns the kind name, or "unknown" for unclassified tasks.
func (t *Task) KindName() string {
	if t.Kind == nil {
		return KindUnknown
	}
	return t.Kind.Name()
}

// Runnable reports whether the task has a kind and an entry script.
func (t *Task) Runnable() bool {
	return t.Kind != nil && t.HasEntry
}
