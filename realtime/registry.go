package realtime

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"downtime-tracker/domain"
)

type connSet map[uuid.UUID]Conn

// Registry is the room bookkeeping for the real-time subsystem: which live
// connections belong to which user, role, and machine rooms. It is the only
// shared mutable state in this package. Every mutating operation holds the
// lock for the whole mutation, so no caller ever observes a half-applied
// membership change. All operations are idempotent.
type Registry struct {
	mu       sync.RWMutex
	users    map[int]connSet
	roles    map[domain.Role]connSet
	machines map[int]connSet
}

func NewRegistry() *Registry {
	return &Registry{
		users:    make(map[int]connSet),
		roles:    make(map[domain.Role]connSet),
		machines: make(map[int]connSet),
	}
}

// Register inserts a freshly authenticated connection into its user room and
// role room. Machine rooms start empty; the client joins them explicitly.
func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := c.Principal()
	if _, ok := r.users[p.UserID]; !ok {
		r.users[p.UserID] = make(connSet)
	}
	r.users[p.UserID][c.ID()] = c

	if _, ok := r.roles[p.Role]; !ok {
		r.roles[p.Role] = make(connSet)
	}
	r.roles[p.Role][c.ID()] = c
}

// Deregister removes a connection from all three room families and prunes
// any key whose set becomes empty. After it returns, no lookup can yield
// this connection.
func (r *Registry) Deregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := c.Principal()
	if set, ok := r.users[p.UserID]; ok {
		delete(set, c.ID())
		if len(set) == 0 {
			delete(r.users, p.UserID)
		}
	}
	if set, ok := r.roles[p.Role]; ok {
		delete(set, c.ID())
		if len(set) == 0 {
			delete(r.roles, p.Role)
		}
	}
	for machineID, set := range r.machines {
		delete(set, c.ID())
		if len(set) == 0 {
			delete(r.machines, machineID)
		}
	}
}

// Join adds the connection to one machine room. Joining twice is a no-op.
func (r *Registry) Join(c Conn, machineID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.machines[machineID]; !ok {
		r.machines[machineID] = make(connSet)
	}
	r.machines[machineID][c.ID()] = c
}

// Leave removes the connection from one machine room. Leaving a room the
// connection never joined is a no-op.
func (r *Registry) Leave(c Conn, machineID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.machines[machineID]
	if !ok {
		return
	}
	delete(set, c.ID())
	if len(set) == 0 {
		delete(r.machines, machineID)
	}
}

// MembersOfUser returns a snapshot of the user room. The slice is safe to
// iterate while other goroutines mutate the registry.
func (r *Registry) MembersOfUser(userID int) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.users[userID])
}

func (r *Registry) MembersOfRole(role domain.Role) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.roles[role])
}

func (r *Registry) MembersOfMachine(machineID int) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.machines[machineID])
}

// Connections returns a snapshot of every live connection, for the liveness
// sweep. Every connection belongs to exactly one user room, so the user map
// already covers them all.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []Conn
	for _, set := range r.users {
		conns = append(conns, lo.Values(set)...)
	}
	return conns
}

// Stats is a point-in-time summary of the registry, exposed for debugging.
type Stats struct {
	Users        int           `json:"users"`
	Connections  int           `json:"connections"`
	MachineRooms []int         `json:"machineRooms"`
	Roles        []domain.Role `json:"roles"`
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connections := lo.SumBy(lo.Values(r.users), func(set connSet) int { return len(set) })

	machineRooms := lo.Keys(r.machines)
	sort.Ints(machineRooms)

	roles := lo.Keys(r.roles)
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	return Stats{
		Users:        len(r.users),
		Connections:  connections,
		MachineRooms: machineRooms,
		Roles:        roles,
	}
}
