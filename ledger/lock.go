package ledger

import "sync"

// lockEntry carrega o mutex de um conteúdo e quantos goroutines o
// querem agora; zerou, a entrada sai do mapa.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// locks serializa appends por id de conteúdo. O append é um
// read-modify-write sobre um campo único: dois writers simultâneos no
// mesmo registro perderiam adições um do outro sem isso. Registros
// distintos seguem concorrendo livremente.
var locks = struct {
	mu sync.Mutex
	m  map[int64]*lockEntry
}{m: make(map[int64]*lockEntry)}

func Lock(contentID int64) {
	locks.mu.Lock()
	e := locks.m[contentID]
	if e == nil {
		e = &lockEntry{}
		locks.m[contentID] = e
	}
	e.refs++
	locks.mu.Unlock()
	e.mu.Lock()
}

func Unlock(contentID int64) {
	locks.mu.Lock()
	e := locks.m[contentID]
	if e == nil {
		locks.mu.Unlock()
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(locks.m, contentID)
	}
	locks.mu.Unlock()
	e.mu.Unlock()
}
