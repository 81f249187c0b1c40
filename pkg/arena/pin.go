package arena

import "sync"

// pinned keeps every arena that holds live chunks reachable. Handles refer
// to arena memory only through tagged words, which the collector does not
// trace, so an arena dropped without Clear or Close must not take its chunks
// with it.
var pinned sync.Map

func pin(owner any) {
	pinned.Store(owner, struct{}{})
}

func unpin(owner any) {
	pinned.Delete(owner)
}

// Pinned reports how many arenas currently hold chunks.
func Pinned() (n int) {
	pinned.Range(func(_, _ any) bool {
		n++
		return true
	})
	return
}
