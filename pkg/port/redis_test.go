package port

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nobletooth/deque/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func command(name string, args ...string) redisCommand {
	cmd := redisCommand{command: name, args: make([][]byte, len(args))}
	for i, arg := range args {
		cmd.args[i] = []byte(arg)
	}
	return cmd
}

func bulks(values ...string) [][]byte {
	out := make([][]byte, len(values))
	for i, value := range values {
		out[i] = []byte(value)
	}
	return out
}

func TestRedisHandler(t *testing.T) {
	_, err := newRedisHandler(nil)
	assert.Error(t, err)
	handler, err := newRedisHandler(newTestStore(t))
	require.NoError(t, err)

	for _, testCase := range []struct {
		name     string
		cmd      redisCommand
		expected redisOutput
	}{
		{name: "ping", cmd: command("PING"), expected: writeRedisString("PONG")},
		{name: "ping_echo", cmd: command("PING", "hi"), expected: writeRedisBulk([]byte("hi"))},
		{name: "rpush", cmd: command("RPUSH", "q", "1", "2"), expected: writeRedisInt(2)},
		{name: "lpush", cmd: command("LPUSH", "q", "0"), expected: writeRedisInt(3)},
		{name: "llen", cmd: command("LLEN", "q"), expected: writeRedisInt(3)},
		{name: "walk", cmd: command("DQWALK", "q"), expected: writeRedisArray(bulks("0", "1", "2"))},
		{name: "walk_rev", cmd: command("DQWALK", "q", "rev"), expected: writeRedisArray(bulks("2", "1", "0"))},
		{name: "walk_bad_option", cmd: command("DQWALK", "q", "sideways"),
			expected: writeRedisError(fmt.Errorf("syntax error, expected REV but got 'sideways'"))},
		{name: "lpop", cmd: command("LPOP", "q"), expected: writeRedisBulk([]byte("0"))},
		{name: "rpop", cmd: command("RPOP", "q"), expected: writeRedisBulk([]byte("2"))},
		{name: "keys", cmd: command("KEYS", "*"), expected: writeRedisArray(bulks("q"))},
		{name: "clear", cmd: command("DQCLEAR", "q"), expected: writeRedisInt(1)},
		{name: "pop_empty", cmd: command("LPOP", "q"), expected: writeRedisNil()},
		{name: "walk_empty", cmd: command("DQWALK", "q"), expected: writeRedisArray(bulks())},
		{name: "del", cmd: command("DEL", "q", "missing"), expected: writeRedisInt(1)},
		{name: "walk_missing", cmd: command("DQWALK", "q"), expected: writeRedisArray(nil)},
		{name: "push_empty_value", cmd: command("RPUSH", "e", ""), expected: writeRedisInt(1)},
		{name: "pop_empty_value", cmd: command("RPOP", "e"), expected: writeRedisBulk([]byte{})},
		{name: "wrong_arity", cmd: command("LPUSH", "q"),
			expected: writeRedisError(fmt.Errorf("wrong number of arguments for 'lpush' command"))},
		{name: "unknown", cmd: command("LINDEX", "q", "0"),
			expected: writeRedisError(fmt.Errorf("unknown command 'LINDEX'"))},
		{name: "quit", cmd: command("QUIT"), expected: closeRedisConnection(RedisOk)},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, handler.handle(testCase.cmd))
		})
	}
}

// freeAddress returns a local address nothing listens on right now.
func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

// respCommand encodes `args` as a RESP array of bulk strings.
func respCommand(args ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d\r\n", len(args))
	for _, arg := range args {
		fmt.Fprintf(&sb, "$%d\r\n%s\r\n", len(arg), arg)
	}
	return sb.String()
}

func TestRunRedisServer(t *testing.T) {
	addr := freeAddress(t)
	config.SetTestFlag(t, "address", addr)
	store, err := NewDequeStore()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() { serverErr <- RunRedisServer(ctx, store) }()

	var conn net.Conn
	require.Eventually(t, func() bool {
		conn, err = net.Dial("tcp", addr)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	defer func() { _ = conn.Close() }()
	reader := bufio.NewReader(conn)

	roundTrip := func(expected string, args ...string) {
		t.Helper()
		_, err := conn.Write([]byte(respCommand(args...)))
		require.NoError(t, err)
		got := make([]byte, len(expected))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, err = io.ReadFull(reader, got)
		require.NoError(t, err)
		assert.Equal(t, expected, string(got))
	}

	roundTrip("+PONG\r\n", "PING")
	roundTrip(":3\r\n", "rpush", "floats", "1.123", "1.223", "1.3123")
	roundTrip(":4\r\n", "LPUSH", "floats", "3.14")
	roundTrip("*4\r\n$4\r\n3.14\r\n$5\r\n1.123\r\n$5\r\n1.223\r\n$6\r\n1.3123\r\n", "DQWALK", "floats")
	roundTrip(":4\r\n", "DQCLEAR", "floats")
	roundTrip("$-1\r\n", "LPOP", "floats")
	roundTrip("$-1\r\n", "RPOP", "floats")
	roundTrip(":1\r\n", "LPUSH", "floats", "3.14")
	roundTrip("*1\r\n$4\r\n3.14\r\n", "DQWALK", "floats")
	roundTrip("-ERR unknown command 'NOPE'\r\n", "NOPE")

	cancel()
	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Server didn't stop after its context was cancelled")
	}
	assert.Zero(t, store.Len("floats"), "Closing the server should close the store")
}
