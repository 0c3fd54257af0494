package session

// NoActiveHome is the sentinel active home id meaning "none selected".
const NoActiveHome int64 = -1

// Session is the durable client session.
//
// Token absence is the terminal "logged out" state. The endpoint always
// resolves to a usable URL: the persisted value if one exists, otherwise
// the store's configured default. ActiveHomeID is NoActiveHome until a
// home has been selected.
type Session struct {
	Token        string
	Username     string
	Endpoint     string
	ActiveHomeID int64
}

// IsLoggedIn reports whether the session holds a non-empty token.
func (s Session) IsLoggedIn() bool {
	return s.Token != ""
}
