package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeLeaveRoom  = 103
	MsgTypeSetReady   = 104
	MsgTypeGuess      = 201
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Commands: create | join <code> | leave <code> | ready <code> | unready <code> | guess <code> <name>")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupted, closing connection.")
			c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "create":
			err = send(c, MsgTypeCreateRoom, nil)
		case "join":
			if len(fields) < 2 {
				log.Println("Usage: join <code>")
				continue
			}
			err = send(c, MsgTypeJoinRoom, map[string]string{"code": fields[1]})
		case "leave":
			if len(fields) < 2 {
				log.Println("Usage: leave <code>")
				continue
			}
			err = send(c, MsgTypeLeaveRoom, map[string]string{"code": fields[1]})
		case "ready", "unready":
			if len(fields) < 2 {
				log.Println("Usage: ready|unready <code>")
				continue
			}
			err = send(c, MsgTypeSetReady, map[string]interface{}{
				"code":    fields[1],
				"isReady": fields[0] == "ready",
			})
		case "guess":
			if len(fields) < 3 {
				log.Println("Usage: guess <code> <name>")
				continue
			}
			err = send(c, MsgTypeGuess, map[string]string{
				"code": fields[1],
				"name": fields[2],
			})
		default:
			log.Printf("Unknown command: %s", fields[0])
			continue
		}

		if err != nil {
			log.Println("Write error:", err)
			return
		}
	}
}
