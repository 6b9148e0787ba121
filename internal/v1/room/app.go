package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/metrics"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// App is the process-wide room registry. One RWMutex guards every
// room: mutating entry points take the write side from validation
// through fan-out, read-only probes take the reader side. Nothing
// blocking runs under the lock; queued frames drain on each client's
// own writer goroutine.
type App struct {
	mu    sync.RWMutex
	rooms map[types.RoomName]*Room

	saver         Saver
	defaultEditor bool
}

// NewApp builds an empty registry. A nil saver disables room
// snapshots; defaultEditor controls whether rooms grant edit or view
// to joiners after the first.
func NewApp(saver Saver, defaultEditor bool) *App {
	if saver == nil {
		saver = NopSaver{}
	}
	return &App{
		rooms:         make(map[types.RoomName]*Room),
		saver:         saver,
		defaultEditor: defaultEditor,
	}
}

// JoinParams carries everything the transport learned during the
// join handshake. Nil Color and Canvas mean the client left the
// choice to the server.
type JoinParams struct {
	RoomName types.RoomName
	Addr     types.Addr
	Username string
	Color    *types.Color
	Canvas   *types.CanvasID
	Password string
	Conn     types.ClientConn
}

// CheckPassword probes whether a password would be accepted for the
// room. Only the registry lookup takes the reader lock; the bcrypt
// comparison runs with no lock held. The answer can go stale before
// the join lands, exactly like any other password prompt.
func (a *App) CheckPassword(name types.RoomName, password string) *protocol.JoinError {
	a.mu.RLock()
	var hash string
	if room, ok := a.rooms[name]; ok {
		hash = room.config.passwordHash
	}
	a.mu.RUnlock()

	if hash == "" {
		// Unknown rooms adopt the offered password on creation, and
		// open rooms accept any offer.
		return nil
	}
	if password == "" {
		return protocol.ErrPasswordRequired()
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return protocol.ErrPasswordIncorrect()
	}
	return nil
}

// Join admits a user, creating the room on first join. The first
// joiner's password, if any, becomes the room's. The whole admission,
// join broadcast included, runs under one write lock so the joiner's
// snapshot and the join announcement cannot be torn apart.
func (a *App) Join(ctx context.Context, p JoinParams) (uuid.UUID, *protocol.JoinError) {
	// Hash before taking the lock; bcrypt is far too slow to hold
	// every room hostage for.
	var hash string
	if p.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			logging.Error(ctx, "Failed to hash room password", zap.Error(err))
			return uuid.Nil, protocol.ErrWebsocketError()
		}
		hash = string(h)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	room, ok := a.rooms[p.RoomName]
	if !ok {
		room = newRoom(p.RoomName, newConfig(hash, a.defaultEditor))
		a.rooms[p.RoomName] = room
		metrics.ActiveRooms.Inc()
		logging.Info(ctx, "Room created",
			zap.String("room", string(p.RoomName)),
			zap.Bool("protected", hash != ""),
		)
	}

	user := room.buildUser(p)
	room.addUser(ctx, user)
	metrics.RoomUsers.WithLabelValues(string(room.Name)).Set(float64(len(room.users)))

	logging.Info(ctx, "User joined room",
		zap.String("room", string(room.Name)),
		zap.String("user", user.UUID.String()),
		zap.String("username", user.Username),
		zap.String("access_level", string(user.AccessLevel)),
	)
	logging.Debug(ctx, "Join details",
		zap.String("addr", string(user.Addr)),
		zap.String("color", string(user.Color)),
		zap.Uint16("canvas", uint16(user.Canvas)),
	)
	return user.UUID, nil
}

// Dispatch parses and runs one inbound frame from a connected user.
// Malformed frames are logged and dropped. The conn is only used for
// the reply when the sender's room is already gone.
func (a *App) Dispatch(ctx context.Context, roomName types.RoomName, addr types.Addr, conn types.ClientConn, data []byte) {
	cmd, err := protocol.ParseCommand(data)
	if err != nil {
		logging.Warn(ctx, "Dropping malformed command",
			zap.String("room", string(roomName)),
			zap.Error(err),
		)
		metrics.CommandsProcessed.WithLabelValues("malformed", "dropped").Inc()
		return
	}

	status := "ok"
	start := time.Now()
	defer func() {
		metrics.CommandDuration.WithLabelValues(string(cmd.Type)).Observe(time.Since(start).Seconds())
		metrics.CommandsProcessed.WithLabelValues(string(cmd.Type), status).Inc()
	}()

	a.mu.Lock()
	defer a.mu.Unlock()

	room, ok := a.rooms[roomName]
	if !ok {
		status = "error"
		if cmd.ID != nil {
			if reply, err := protocol.EncodeError(*cmd.ID, protocol.ErrorRoomDoesNotExist); err == nil {
				conn.SendRaw(reply)
			}
		}
		return
	}
	sender := room.userByAddr(addr)
	if sender == nil {
		status = "error"
		room.respondError(ctx, conn, cmd.ID, protocol.ErrorRoomDoesNotExist)
		return
	}

	result := room.route(ctx, sender, cmd)
	if result.IsErr() {
		status = "error"
	}
	room.deliver(ctx, sender, cmd.ID, result)
}

// DisconnectUser removes a user after their connection died, and
// reports whether they were found. The last user leaving closes the
// room; its snapshot is written after the lock is released.
func (a *App) DisconnectUser(ctx context.Context, roomName types.RoomName, addr types.Addr) bool {
	found, snap := a.remove(ctx, roomName, addr)
	if snap != nil {
		if err := a.saver.Save(ctx, *snap); err != nil {
			logging.Error(ctx, "Failed to save room snapshot",
				zap.String("room", string(roomName)),
				zap.Error(err),
			)
		}
	}
	return found
}

func (a *App) remove(ctx context.Context, roomName types.RoomName, addr types.Addr) (bool, *Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	room, ok := a.rooms[roomName]
	if !ok {
		return false, nil
	}
	found, empty := room.removeUser(ctx, addr)
	if !found {
		return false, nil
	}

	logging.Info(ctx, "User left room", zap.String("room", string(roomName)))

	if !empty {
		metrics.RoomUsers.WithLabelValues(string(roomName)).Set(float64(len(room.users)))
		return true, nil
	}

	snap := room.takeSnapshot()
	delete(a.rooms, roomName)
	metrics.ActiveRooms.Dec()
	metrics.RoomUsers.DeleteLabelValues(string(roomName))
	logging.Info(ctx, "Room closed", zap.String("room", string(roomName)))
	return true, &snap
}

// RunHeartbeat pings every connected user at the given interval until
// the context is canceled. There is no pong bookkeeping; dead
// connections surface on their read side.
func (a *App) RunHeartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.pingAll()
		}
	}
}

func (a *App) pingAll() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, room := range a.rooms {
		for _, u := range room.users {
			u.conn.SendPing()
		}
	}
}

// Stats reports the current number of rooms and connected users.
func (a *App) Stats() (rooms, users int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rooms = len(a.rooms)
	for _, r := range a.rooms {
		users += len(r.users)
	}
	return rooms, users
}

// Shutdown snapshots every room and disconnects every user. The
// registry keeps working afterwards, but callers treat this as final.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	var snaps []Snapshot
	for name, room := range a.rooms {
		snaps = append(snaps, room.takeSnapshot())
		for _, u := range room.users {
			u.conn.Disconnect()
		}
		delete(a.rooms, name)
		metrics.ActiveRooms.Dec()
		metrics.RoomUsers.DeleteLabelValues(string(name))
	}
	a.mu.Unlock()

	for _, snap := range snaps {
		if err := a.saver.Save(ctx, snap); err != nil {
			logging.Error(ctx, "Failed to save room snapshot during shutdown",
				zap.String("room", string(snap.Room)),
				zap.Error(err),
			)
		}
	}

	logging.Info(ctx, "Room registry shut down", zap.Int("rooms_closed", len(snaps)))
	return nil
}
