package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    [][]byte
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeBulk       []byte   // Writes a bulk string if set.
	isArray         bool     // Writes `writeArray` as an array of bulk strings if true.
	writeArray      [][]byte // Elements written when `isArray` is set.
	writeString     string   // Writes a simple string value otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(b []byte) redisOutput {
	if b == nil { // Empty values are still bulk strings, not simple strings.
		b = []byte{}
	}
	return redisOutput{writeBulk: b}
}

func writeRedisArray(elements [][]byte) redisOutput {
	return redisOutput{isArray: true, writeArray: elements}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

func wrongArity(command string) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

type redisHandler struct {
	store *DequeStore
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(store *DequeStore) (*redisHandler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil storage")
	}
	return &redisHandler{store: store}, nil
}

func (rh *redisHandler) push(cmd redisCommand, end End) redisOutput {
	if len(cmd.args) < 2 {
		return wrongArity(cmd.command)
	}
	length, err := rh.store.Push(string(cmd.args[0]), end, cmd.args[1:]...)
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(length)
}

func (rh *redisHandler) pop(cmd redisCommand, end End) redisOutput {
	if len(cmd.args) != 1 {
		return wrongArity(cmd.command)
	}
	if value, found := rh.store.Pop(string(cmd.args[0]), end); found {
		return writeRedisBulk(value)
	}
	return writeRedisNil()
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	switch cmd.command {
	case "PING":
		if len(cmd.args) == 1 {
			return writeRedisBulk(cmd.args[0])
		}
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "LPUSH":
		return rh.push(cmd, Front)
	case "RPUSH":
		return rh.push(cmd, Back)
	case "LPOP":
		return rh.pop(cmd, Front)
	case "RPOP":
		return rh.pop(cmd, Back)
	case "LLEN":
		if len(cmd.args) != 1 {
			return wrongArity(cmd.command)
		}
		return writeRedisInt(rh.store.Len(string(cmd.args[0])))
	case "DQWALK": // DQWALK key [REV]
		if len(cmd.args) < 1 || len(cmd.args) > 2 {
			return wrongArity(cmd.command)
		}
		reverse := len(cmd.args) == 2
		if reverse && !strings.EqualFold(string(cmd.args[1]), "REV") {
			return writeRedisError(fmt.Errorf("syntax error, expected REV but got '%s'", cmd.args[1]))
		}
		return writeRedisArray(rh.store.Walk(string(cmd.args[0]), reverse))
	case "DQCLEAR":
		if len(cmd.args) != 1 {
			return wrongArity(cmd.command)
		}
		return writeRedisInt(rh.store.Clear(string(cmd.args[0])))
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArity(cmd.command)
		}
		keys := make([]string, len(cmd.args))
		for i, key := range cmd.args {
			keys[i] = string(key)
		}
		return writeRedisInt(rh.store.Delete(keys...))
	case "KEYS":
		if len(cmd.args) != 1 {
			return wrongArity(cmd.command)
		}
		keys, err := rh.store.Keys(string(cmd.args[0]))
		if err != nil {
			return writeRedisError(err)
		}
		elements := make([][]byte, len(keys))
		for i, key := range keys {
			elements[i] = []byte(key)
		}
		return writeRedisArray(elements)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// writeRedisOutput sends `output` to the client behind `conn`.
func writeRedisOutput(conn redcon.Conn, output redisOutput) {
	switch {
	case output.err != nil:
		conn.WriteError(*output.err)
	case output.writeNil:
		conn.WriteNull()
	case output.writeInt != nil:
		conn.WriteInt(*output.writeInt)
	case output.isArray:
		conn.WriteArray(len(output.writeArray))
		for _, element := range output.writeArray {
			conn.WriteBulk(element)
		}
	case output.writeBulk != nil:
		conn.WriteBulk(output.writeBulk)
	default:
		conn.WriteString(output.writeString)
	}

	if output.closeConnection {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close connection.", "remote", conn.RemoteAddr(), "error", err)
		}
	}
}

// RunRedisServer serves the deques in `store` over the Redis protocol until `ctx` is cancelled.
func RunRedisServer(ctx context.Context, store *DequeStore) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(store)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand. Arguments are copied by the store before being kept.
			command := redisCommand{command: strings.ToUpper(string(cmd.Args[0])), args: cmd.Args[1:]}
			writeRedisOutput(conn, redisHandler.handle(command))
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted connection.", "remote", conn.RemoteAddr())
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Connection closed with error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		slog.Info("Serving deques over the Redis protocol.", "address", *address)
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()

	select {
	case <-ctx.Done():
		serverErr := redisServer.Close()
		storeErr := store.Close()
		if exitErr := errors.Join(serverErr, storeErr); exitErr != nil {
			return fmt.Errorf("failed to close deque server: %w", exitErr)
		}
	case err := <-serverErrSignal:
		if err == nil {
			return errors.New("redis server stopped unexpectedly")
		}
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
