package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/guessdex/logger"
	"github.com/wfunc/guessdex/persistence"
	"github.com/wfunc/guessdex/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes round-archive queries over net/rpc. Methods follow
// the net/rpc signature: exported method, exported arguments, second
// argument a pointer, error return.
type StatsService struct {
	recordService *services.RecordService
}

func NewStatsService(rs *services.RecordService) *StatsService {
	return &StatsService{recordService: rs}
}

type RecentRoundsArgs struct {
	Limit int
}

type RecentRoundsReply struct {
	Rounds []persistence.RoundRecord
}

func (ss *StatsService) RecentRounds(args *RecentRoundsArgs, reply *RecentRoundsReply) error {
	rounds, err := ss.recordService.RecentRounds(args.Limit)
	if err != nil {
		return err
	}
	reply.Rounds = rounds
	return nil
}

type TopWinnersArgs struct {
	Limit int
}

type TopWinnersReply struct {
	Winners []persistence.WinnerCount
}

func (ss *StatsService) TopWinners(args *TopWinnersArgs, reply *TopWinnersReply) error {
	winners, err := ss.recordService.TopWinners(args.Limit)
	if err != nil {
		return err
	}
	reply.Winners = winners
	return nil
}
