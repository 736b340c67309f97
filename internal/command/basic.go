package command

import (
	"strconv"
	"strings"

	"github.com/lojhan/symtable/internal/resp"
	"github.com/lojhan/symtable/internal/symtable"
)

const Version = "1.0.0"

func PingCommand(args []resp.Value) resp.Value {
	if len(args) == 0 {
		return resp.PongValue()
	}

	if len(args) > 1 {
		return wrongArgs("ping")
	}

	if args[0].Type != resp.BulkString {
		return resp.ErrorValue("ERR invalid argument type")
	}

	return args[0]
}

func EchoCommand(args []resp.Value) resp.Value {
	if len(args) != 1 {
		return wrongArgs("echo")
	}

	if args[0].Type != resp.BulkString {
		return resp.ErrorValue("ERR invalid argument type")
	}

	return args[0]
}

// statser is implemented by tables that can report their bucket layout.
type statser interface {
	Stats() symtable.Stats
}

// InfoCommand reports the server and table sections as "name:value" lines.
func InfoCommand(t symtable.SymTable[string], impl string) Handler {
	return func(args []resp.Value) resp.Value {
		section := "all"
		if len(args) > 1 {
			return wrongArgs("info")
		}
		if len(args) == 1 {
			if args[0].Type != resp.BulkString {
				return resp.ErrorValue("ERR invalid argument type")
			}
			section = strings.ToLower(args[0].Str)
		}

		var b strings.Builder
		if section == "all" || section == "server" {
			b.WriteString("# Server\r\n")
			b.WriteString("symtable_version:" + Version + "\r\n")
			b.WriteString("implementation:" + impl + "\r\n")
		}
		if section == "all" || section == "table" {
			b.WriteString("# Table\r\n")
			b.WriteString("bindings:" + strconv.Itoa(t.Len()) + "\r\n")
			if st, ok := t.(statser); ok {
				s := st.Stats()
				b.WriteString("buckets:" + strconv.Itoa(s.Buckets) + "\r\n")
				b.WriteString("capacity_index:" + strconv.Itoa(s.CapacityIndex) + "\r\n")
				b.WriteString("used_buckets:" + strconv.Itoa(s.UsedBuckets) + "\r\n")
				b.WriteString("longest_chain:" + strconv.Itoa(s.LongestChain) + "\r\n")
				b.WriteString("rehashes:" + strconv.Itoa(s.Rehashes) + "\r\n")
			}
		}
		if b.Len() == 0 {
			return resp.ErrorValue("ERR unknown INFO section '" + section + "'")
		}

		return resp.BulkStringValue(b.String())
	}
}

func wrongArgs(name string) resp.Value {
	return resp.ErrorValue("ERR wrong number of arguments for '" + name + "' command")
}
