package ports

// Window exposes navigation and window state.
type Window interface {
	// URL returns the current location.
	URL() string
	// Hash returns the fragment of the current location including '#',
	// or "" when there is none.
	Hash() string
	SetHash(hash string)
	ReplaceState(url string)
	PushState(url string)
	Visible() bool
	Focus()
}
