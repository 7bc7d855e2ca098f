package models

// ActiveWindow describes the focused compositor window.
type ActiveWindow struct {
	Title string `json:"title"`
	Class string `json:"class"`
	PID   int    `json:"pid"`
}

// Workspace is one entry of the workspace list. Only non-special
// workspaces (id >= 0) are ever exposed, sorted ascending by id.
type Workspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Windows int    `json:"windows"`
}

// DisplayState is the snapshot served by the display daemon.
type DisplayState struct {
	ActiveWindow      ActiveWindow `json:"active_window"`
	Workspaces        []Workspace  `json:"workspaces"`
	ActiveWorkspaceID *int         `json:"active_workspace_id"`
}

// Equal reports field-wise value equality, including element-wise
// comparison of the workspace list.
func (d DisplayState) Equal(other DisplayState) bool {
	if d.ActiveWindow != other.ActiveWindow {
		return false
	}
	if !intPtrEqual(d.ActiveWorkspaceID, other.ActiveWorkspaceID) {
		return false
	}
	if len(d.Workspaces) != len(other.Workspaces) {
		return false
	}
	for i := range d.Workspaces {
		if d.Workspaces[i] != other.Workspaces[i] {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Int returns a pointer to v. Convenience for building snapshots.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
