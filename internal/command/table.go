package command

import (
	"github.com/lojhan/symtable/internal/resp"
	"github.com/lojhan/symtable/internal/symtable"
)

// Handler executes one command against its arguments (the command name
// already stripped).
type Handler = func(args []resp.Value) resp.Value

// stringArgs checks the argument count and that every argument is a bulk
// string.
func stringArgs(name string, args []resp.Value, n int) ([]string, *resp.Value) {
	if len(args) != n {
		v := wrongArgs(name)
		return nil, &v
	}
	out := make([]string, n)
	for i, arg := range args {
		if arg.Type != resp.BulkString || arg.Null {
			v := resp.ErrorValue("ERR invalid argument type")
			return nil, &v
		}
		out[i] = arg.Str
	}
	return out, nil
}

// PutCommand replies 1 when the binding was added and 0 when the key
// was already bound.
func PutCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		a, errv := stringArgs("put", args, 2)
		if errv != nil {
			return *errv
		}
		return resp.BoolValue(t.Put(a[0], a[1]))
	}
}

func GetCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		a, errv := stringArgs("get", args, 1)
		if errv != nil {
			return *errv
		}
		value, ok := t.Get(a[0])
		if !ok {
			return resp.NullBulkStringValue()
		}
		return resp.BulkStringValue(value)
	}
}

func ContainsCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		a, errv := stringArgs("contains", args, 1)
		if errv != nil {
			return *errv
		}
		return resp.BoolValue(t.Contains(a[0]))
	}
}

// ReplaceCommand replies with the previous value, or null when the key
// is not bound.
func ReplaceCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		a, errv := stringArgs("replace", args, 2)
		if errv != nil {
			return *errv
		}
		old, ok := t.Replace(a[0], a[1])
		if !ok {
			return resp.NullBulkStringValue()
		}
		return resp.BulkStringValue(old)
	}
}

func RemoveCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		a, errv := stringArgs("remove", args, 1)
		if errv != nil {
			return *errv
		}
		value, ok := t.Remove(a[0])
		if !ok {
			return resp.NullBulkStringValue()
		}
		return resp.BulkStringValue(value)
	}
}

func LenCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		if len(args) != 0 {
			return wrongArgs("len")
		}
		return resp.IntegerValue(int64(t.Len()))
	}
}

// MapCommand replies with a flat key, value, key, value... array in
// traversal order.
func MapCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		if len(args) != 0 {
			return wrongArgs("map")
		}
		out := make([]resp.Value, 0, 2*t.Len())
		t.Map(func(key, value string, _ any) {
			out = append(out, resp.BulkStringValue(key), resp.BulkStringValue(value))
		}, nil)
		return resp.ArrayValue(out...)
	}
}

func KeysCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		if len(args) != 0 {
			return wrongArgs("keys")
		}
		out := make([]resp.Value, 0, t.Len())
		for key := range t.All() {
			out = append(out, resp.BulkStringValue(key))
		}
		return resp.ArrayValue(out...)
	}
}

func FreeCommand(t symtable.SymTable[string]) Handler {
	return func(args []resp.Value) resp.Value {
		if len(args) != 0 {
			return wrongArgs("free")
		}
		t.Free()
		return resp.OKValue()
	}
}

// Register wires every table command into reg.
func Register(reg func(name string, h Handler), t symtable.SymTable[string], impl string) {
	reg("PING", PingCommand)
	reg("ECHO", EchoCommand)
	reg("INFO", InfoCommand(t, impl))

	reg("PUT", PutCommand(t))
	reg("GET", GetCommand(t))
	reg("CONTAINS", ContainsCommand(t))
	reg("REPLACE", ReplaceCommand(t))
	reg("REMOVE", RemoveCommand(t))
	reg("LEN", LenCommand(t))
	reg("MAP", MapCommand(t))
	reg("KEYS", KeysCommand(t))
	reg("FREE", FreeCommand(t))
}
