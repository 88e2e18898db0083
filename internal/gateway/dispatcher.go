package gateway

// Dispatcher is what services use to push events to connected clients.
// *Manager implements it.
type Dispatcher interface {
	DispatchToWorkspace(workspaceID int64, event string, data any)
	DispatchToUser(userID int64, event string, data any)
	SubscribeToWorkspace(userID, workspaceID int64)
	UnsubscribeFromWorkspace(userID, workspaceID int64)
	// DropWorkspace removes every subscription to a deleted workspace.
	DropWorkspace(workspaceID int64)
}
