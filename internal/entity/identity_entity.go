package entity

const (
	ScopeChatsRead     = "chats:read"
	ScopeChatsWrite    = "chats:write"
	ScopeMessagesRead  = "messages:read"
	ScopeMessagesWrite = "messages:write"
)

// Identity is the authenticated principal behind a request or connection.
type Identity struct {
	UserId int64
	Scopes []string
}

func (i *Identity) HasScopes(required ...string) bool {
	for _, r := range required {
		found := false
		for _, s := range i.Scopes {
			if s == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
