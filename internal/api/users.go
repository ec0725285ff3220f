package api

import (
	"sync"

	"pokerserver/internal/table"
)

// userDirectory is the minimal, in-memory, non-durable profile store
// backing POST /me and GET /top. Real profile persistence lives in the
// external lobby subsystem this core only glues to.
type userDirectory struct {
	mu    sync.Mutex
	users map[string]*userRecord
}

type userRecord struct {
	UserID      string
	DisplayName string
	Balance     int64
}

func newUserDirectory() *userDirectory {
	return &userDirectory{users: make(map[string]*userRecord)}
}

func (d *userDirectory) getOrCreate(userID, displayName string) *userRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		u = &userRecord{UserID: userID, DisplayName: displayName, Balance: table.StartBalance}
		d.users[userID] = u
	}
	if displayName != "" {
		u.DisplayName = displayName
	}
	return u
}

func (d *userDirectory) top(n int) []*userRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*userRecord, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Balance > out[j-1].Balance; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
