package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/lojhan/symtable/internal/resp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6380", "Server address")
	timeout := flag.Duration("timeout", 5*time.Second, "Dial and reply timeout")
	flag.Parse()

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	c := &client{conn: conn, parser: resp.NewParser(conn), timeout: *timeout}

	if flag.NArg() > 0 {
		if err := c.run(os.Stdout, flag.Args()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", *addr)
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "quit") || strings.EqualFold(fields[0], "exit") {
			return
		}
		if err := c.run(os.Stdout, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
	}
}

type client struct {
	conn    net.Conn
	parser  *resp.Parser
	timeout time.Duration
}

func (c *client) run(w io.Writer, fields []string) error {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	if err := resp.NewSerializer(c.conn).Serialize(resp.Command(fields[0], fields[1:]...)); err != nil {
		return fmt.Errorf("send %s: %w", fields[0], err)
	}
	reply, err := c.parser.Parse()
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	_, err = fmt.Fprintln(w, reply)
	return err
}
