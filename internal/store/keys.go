package store

// Persistence keys. The names come from the browser build of the
// application, which kept the same blobs in localStorage; keeping them
// makes data written by either implementation interchangeable.
const (
	KeyUsers       = "wild-card-users"
	KeyPosts       = "wild-card-posts"
	KeyGroups      = "wild-card-groups"
	KeyCurrentUser = "wild-card-current-user"
	KeyNewUserFlag = "wild-card-is-new-user"

	// Notifications are stored per recipient under
	// wild-card-notifications:<username>.
	keyNotificationsPrefix = "wild-card-notifications:"
)

// NotificationsKey returns the per-user notification collection key.
func NotificationsKey(username string) string {
	return keyNotificationsPrefix + username
}
