package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/guessdex/broadcast"
	"github.com/wfunc/guessdex/config"
	"github.com/wfunc/guessdex/dex"
	"github.com/wfunc/guessdex/game"
	"github.com/wfunc/guessdex/logger"
	"github.com/wfunc/guessdex/monitor"
	"github.com/wfunc/guessdex/network"
	"github.com/wfunc/guessdex/persistence"
	"github.com/wfunc/guessdex/room"
	guessdex_rpc "github.com/wfunc/guessdex/rpc"
	"github.com/wfunc/guessdex/services"
	"github.com/wfunc/guessdex/session"
	"github.com/wfunc/guessdex/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	engine         *game.Engine
	recordService  *services.RecordService
	rpcServer      *guessdex_rpc.Server
	monitor        *monitor.Monitor
	timerManager   *timer.Manager
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		registry:       room.NewRegistry(cfg.Game.CodeLength),
		sessionManager: session.NewManager(),
		recordService:  services.NewRecordService(db),
		monitor:        monitor.NewMonitor("guessdex"),
		timerManager:   timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	broadcaster := broadcast.NewRoomBroadcaster(s.registry, s.sessionManager)
	lookup := dex.NewClient(cfg.Dex.BaseURL, cfg.Dex.Timeout)

	s.engine = game.NewEngine(cfg.Game, s.registry, broadcaster, lookup)
	s.engine.SetRecorder(s.recordService)
	s.engine.SetMetrics(s.monitor)

	rpcServer, err := guessdex_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	statsService := guessdex_rpc.NewStatsService(s.recordService)
	rpc.Register(statsService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MetricsAddress)
	s.startIdleSweep()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timerManager.Stop()
	s.rpcServer.Stop()
}

// startIdleSweep disconnects sessions that have been silent past the
// heartbeat window. The read-loop teardown then runs the normal
// disconnect cleanup.
func (s *GameServer) startIdleSweep() {
	timeout := s.cfg.Server.SessionTimeout
	if timeout <= 0 {
		return
	}
	s.timerManager.Add(timeout, timeout/2, func() {
		cutoff := time.Now().Add(-timeout)
		for _, sess := range s.sessionManager.All() {
			if sess.IdleSince().Before(cutoff) {
				logger.Log.Infof("Closing idle session %s", sess.GetID())
				sess.Close()
			}
		}
	})
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.engine.Disconnect(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

type roomRequest struct {
	Code string `json:"code"`
}

type readyRequest struct {
	Code    string `json:"code"`
	IsReady bool   `json:"isReady"`
}

type guessRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	sess.Touch()
	s.monitor.IncMessagesReceived()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Touch above is the whole job.
	case network.MsgTypeCreateRoom:
		s.reply(sess, s.engine.CreateRoom(sess.GetID()))
	case network.MsgTypeJoinRoom:
		var req roomRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		s.reply(sess, s.engine.JoinRoom(sess.GetID(), req.Code))
	case network.MsgTypeLeaveRoom:
		var req roomRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		s.reply(sess, s.engine.LeaveRoom(sess.GetID(), req.Code))
	case network.MsgTypeSetReady:
		var req readyRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		s.reply(sess, s.engine.SetReady(sess.GetID(), req.Code, req.IsReady))
	case network.MsgTypeGuess:
		var req guessRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		s.reply(sess, s.engine.SubmitGuess(sess.GetID(), req.Code, req.Name))
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// reply maps a command error onto the wire taxonomy and unicasts it to the
// requester. Errors never broadcast and never terminate the connection.
func (s *GameServer) reply(sess *session.Session, err error) {
	if err == nil {
		return
	}

	var code string
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		code = game.CodeRoomNotFound
	case errors.Is(err, game.ErrGameNotActive):
		code = game.CodeGameNotActive
	case errors.Is(err, dex.ErrNotFound):
		code = game.CodeEntityNotFound
	default:
		code = game.CodeLookupFailed
	}

	data, _ := json.Marshal(game.ErrorEvent{Code: code, Message: err.Error()})
	if sendErr := sess.Send(network.MsgTypeError, data); sendErr != nil {
		logger.Log.Warnf("Failed to send error to session %s: %v", sess.GetID(), sendErr)
	}
}
